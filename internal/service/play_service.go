package service

import (
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/mmikleusevic/Questionaire-sub000/internal/domain/entity"
	"github.com/mmikleusevic/Questionaire-sub000/internal/domain/repository"
	apperrors "github.com/mmikleusevic/Questionaire-sub000/internal/pkg/errors"
)

// PlayMode определяет форму выдаваемого вопроса
type PlayMode string

const (
	// PlayModeSingle - клиент получает только правильный ответ
	PlayModeSingle PlayMode = "single"
	// PlayModeMulti - клиент получает 3 варианта, один из которых правильный
	PlayModeMulti PlayMode = "multi"
)

// deliveredAnswerCount - количество вариантов в мульти-режиме
const deliveredAnswerCount = 3

// minAnswerCount возвращает минимальное количество ответов у кандидата
func (m PlayMode) minAnswerCount() int {
	if m == PlayModeMulti {
		return deliveredAnswerCount
	}
	return 1
}

// Valid проверяет, что режим известен
func (m PlayMode) Valid() bool {
	return m == PlayModeSingle || m == PlayModeMulti
}

// PlayFilter описывает фильтр пула кандидатов для выдачи
type PlayFilter struct {
	CategoryIDs  []uint
	Difficulties []int
	Mode         PlayMode
}

// PlayService выдаёт игрокам партии ещё не виденных вопросов
type PlayService struct {
	questionRepo repository.QuestionRepository
	historyRepo  repository.HistoryRepository

	// Инжектируемый источник случайности: равномерная выборка проверяется
	// в тестах с фиксированным сидом. rand.Rand не потокобезопасен.
	mu  sync.Mutex
	rng *rand.Rand
}

// NewPlayService создает новый сервис выдачи вопросов.
// Если rng равен nil, используется источник со случайным сидом.
func NewPlayService(
	questionRepo repository.QuestionRepository,
	historyRepo repository.HistoryRepository,
	rng *rand.Rand,
) *PlayService {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &PlayService{
		questionRepo: questionRepo,
		historyRepo:  historyRepo,
		rng:          rng,
	}
}

// GetUniqueQuestions возвращает партию вопросов, которых игрок ещё не видел.
//
// Контракт:
//  1. Пул кандидатов: утверждённые, не удалённые, из запрошенных категорий,
//     нужной сложности и с количеством ответов режима, минус история игрока.
//  2. Равномерный забор без повторов (Fisher-Yates по списку ID).
//  3. При недоборе история игрока сбрасывается в области исходного фильтра,
//     затем выполняется один повторный забор без уже выданных ID. Второй
//     недобор принимается как результат меньшего размера, без рекурсии.
//  4. Выданные вопросы записываются в историю; конфликт журнала не
//     блокирует выдачу.
//  5. Ответы формируются по режиму независимой перетасовкой.
func (s *PlayService) GetUniqueQuestions(userID string, filter PlayFilter, count int) ([]entity.Question, error) {
	if userID == "" {
		return nil, fmt.Errorf("player identity is required: %w", apperrors.ErrUnauthorized)
	}
	if count <= 0 {
		return nil, fmt.Errorf("%w: requested count must be positive", apperrors.ErrValidation)
	}
	mode := filter.Mode
	if mode == "" {
		mode = PlayModeSingle
	}
	if !mode.Valid() {
		return nil, fmt.Errorf("%w: unknown play mode %q", apperrors.ErrValidation, filter.Mode)
	}

	pool := repository.PoolFilter{
		CategoryIDs:         filter.CategoryIDs,
		Difficulties:        filter.Difficulties,
		MinAnswerCount:      mode.minAnswerCount(),
		ExcludeSeenByUserID: userID,
	}

	candidateIDs, err := s.questionRepo.GetEligibleIDs(pool)
	if err != nil {
		return nil, fmt.Errorf("failed to build candidate pool: %w", err)
	}

	drawnIDs := s.drawRandom(candidateIDs, count)

	if len(drawnIDs) < count {
		// Пул исчерпан: сбрасываем историю в области исходного фильтра
		// и повторяем забор один раз, исключая уже выданные ID
		deleted, err := s.historyRepo.DeleteScoped(userID, pool)
		if err != nil {
			return nil, fmt.Errorf("failed to reset exhausted history: %w", err)
		}
		log.Printf("[PlayService] Пул исчерпан для игрока %s: сброшено %d строк истории", userID, deleted)

		redrawPool := pool
		redrawPool.ExcludeQuestionIDs = drawnIDs

		redrawIDs, err := s.questionRepo.GetEligibleIDs(redrawPool)
		if err != nil {
			return nil, fmt.Errorf("failed to rebuild candidate pool after reset: %w", err)
		}
		drawnIDs = append(drawnIDs, s.drawRandom(redrawIDs, count-len(drawnIDs))...)
	}

	if len(drawnIDs) == 0 {
		return []entity.Question{}, nil
	}

	questions, err := s.questionRepo.GetByIDs(drawnIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load drawn questions: %w", err)
	}

	// Восстанавливаем порядок забора: GetByIDs порядок не гарантирует
	byID := make(map[uint]entity.Question, len(questions))
	for _, question := range questions {
		byID[question.ID] = question
	}
	ordered := make([]entity.Question, 0, len(drawnIDs))
	historyRows := make([]entity.UserQuestionHistory, 0, len(drawnIDs))
	for _, id := range drawnIDs {
		question, ok := byID[id]
		if !ok {
			continue
		}
		ordered = append(ordered, question)
		historyRows = append(historyRows, entity.UserQuestionHistory{
			UserID:     userID,
			QuestionID: id,
		})
	}

	if err := s.historyRepo.RecordBatch(historyRows); err != nil {
		return nil, fmt.Errorf("failed to record delivery history: %w", err)
	}

	shaped := make([]entity.Question, 0, len(ordered))
	for _, question := range ordered {
		shaped = append(shaped, s.shapeForMode(question, mode))
	}

	log.Printf("[PlayService] Игроку %s выдано %d/%d вопросов (режим %s)", userID, len(shaped), count, mode)
	return shaped, nil
}

// CountHistory возвращает количество вопросов в истории игрока
func (s *PlayService) CountHistory(userID string) (int64, error) {
	if userID == "" {
		return 0, fmt.Errorf("player identity is required: %w", apperrors.ErrUnauthorized)
	}
	return s.historyRepo.CountByUser(userID)
}

// ResetHistory вручную сбрасывает историю игрока в области фильтра
func (s *PlayService) ResetHistory(userID string, filter PlayFilter) (int64, error) {
	if userID == "" {
		return 0, fmt.Errorf("player identity is required: %w", apperrors.ErrUnauthorized)
	}

	mode := filter.Mode
	if mode == "" {
		mode = PlayModeSingle
	}

	deleted, err := s.historyRepo.DeleteScoped(userID, repository.PoolFilter{
		CategoryIDs:    filter.CategoryIDs,
		Difficulties:   filter.Difficulties,
		MinAnswerCount: mode.minAnswerCount(),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to reset question history: %w", err)
	}

	log.Printf("[PlayService] Ручной сброс истории игрока %s: удалено %d строк", userID, deleted)
	return deleted, nil
}

// drawRandom равномерно забирает до n элементов из ids.
// Явный Fisher-Yates вместо ORDER BY RANDOM(): равномерность не зависит
// от семантики случайной сортировки конкретного движка и тестируема
// с фиксированным сидом.
func (s *PlayService) drawRandom(ids []uint, n int) []uint {
	if len(ids) == 0 || n <= 0 {
		return nil
	}

	shuffled := make([]uint, len(ids))
	copy(shuffled, ids)

	s.mu.Lock()
	s.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	s.mu.Unlock()

	if n > len(shuffled) {
		n = len(shuffled)
	}
	return shuffled[:n]
}

// shapeForMode формирует ответы вопроса для выдачи.
// Одиночный режим: ровно 1 (правильный) ответ. Мульти-режим: ровно 3
// ответа, позиция правильного определяется отдельной перетасовкой -
// случайность забора пула никогда не переиспользуется для порядка ответов.
func (s *PlayService) shapeForMode(question entity.Question, mode PlayMode) entity.Question {
	correct := question.CorrectAnswer()
	if correct == nil {
		// Пул требует наличия правильного ответа; защищаемся от рассинхрона
		question.Answers = nil
		return question
	}

	if mode == PlayModeSingle {
		question.Answers = []entity.Answer{*correct}
		return question
	}

	distractors := make([]entity.Answer, 0, len(question.Answers))
	for _, answer := range question.Answers {
		if !answer.IsCorrect {
			distractors = append(distractors, answer)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// При избытке дистракторов берём случайные
	if len(distractors) > deliveredAnswerCount-1 {
		s.rng.Shuffle(len(distractors), func(i, j int) {
			distractors[i], distractors[j] = distractors[j], distractors[i]
		})
		distractors = distractors[:deliveredAnswerCount-1]
	}

	answers := make([]entity.Answer, 0, deliveredAnswerCount)
	answers = append(answers, *correct)
	answers = append(answers, distractors...)
	s.rng.Shuffle(len(answers), func(i, j int) {
		answers[i], answers[j] = answers[j], answers[i]
	})

	question.Answers = answers
	return question
}
