package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskdeck/task-system/internal/core/domain"
	"github.com/taskdeck/task-system/internal/core/ports"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// ListCache caches list results per user. Implementations must treat their
// own failures as soft: the service logs and falls through to the repository.
type ListCache interface {
	Get(ctx context.Context, userID string, filter ports.ListTasksFilter) (*ports.ListTasksResult, bool, error)
	Set(ctx context.Context, userID string, filter ports.ListTasksFilter, result *ports.ListTasksResult) error
	Invalidate(ctx context.Context, userID string) error
}

// TaskService implements the ownership-scoped task operations. Every
// repository call carries the authenticated userID so a caller can never
// reach another user's tasks.
type TaskService struct {
	repo   ports.TaskRepository
	cache  ListCache
	logger zerolog.Logger
}

// NewTaskService returns a TaskService. cache may be nil, in which case every
// list goes to the repository.
func NewTaskService(repo ports.TaskRepository, cache ListCache, logger zerolog.Logger) *TaskService {
	return &TaskService{repo: repo, cache: cache, logger: logger}
}

// GetTasks lists the caller's tasks with optional status and free-text
// filters. Results are paginated and served from the list cache when a fresh
// entry exists.
func (s *TaskService) GetTasks(ctx context.Context, filter ports.ListTasksFilter, userID string) (*ports.ListTasksResult, error) {
	filter.UserID = userID
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}

	if s.cache != nil {
		cached, hit, err := s.cache.Get(ctx, userID, filter)
		if err != nil {
			s.logger.Warn().Err(err).Str("user_id", userID).Msg("task cache read failed, querying store")
		} else if hit {
			return cached, nil
		}
	}

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("get tasks: %w", err)
	}

	totalPages := int((total + int64(filter.Limit) - 1) / int64(filter.Limit))
	result := &ports.ListTasksResult{
		Items:      items,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, userID, filter, result); err != nil {
			s.logger.Warn().Err(err).Str("user_id", userID).Msg("task cache write failed")
		}
	}
	return result, nil
}

// GetTaskByID looks a task up by (id, userID). This is the canonical
// "does this task belong to this user" check reused by update and delete.
func (s *TaskService) GetTaskByID(ctx context.Context, id, userID string) (*domain.Task, error) {
	task, err := s.repo.FindByID(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("task with ID %q: %w", id, err)
	}
	return task, nil
}

// CreateTask persists a task attributed to userID with status OPEN.
func (s *TaskService) CreateTask(ctx context.Context, input ports.CreateTaskInput, userID string) (*domain.Task, error) {
	now := time.Now().UTC()
	task := &domain.Task{
		Title:       input.Title,
		Description: input.Description,
		Status:      domain.StatusOpen,
		UserID:      userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	created, err := s.repo.Create(ctx, task)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to create task")
		return nil, fmt.Errorf("create task: %w", err)
	}

	s.invalidateCache(ctx, userID)
	s.logger.Info().Str("task_id", created.ID).Str("user_id", userID).Msg("task created")
	return created, nil
}

// DeleteTask removes the task matching (id, userID). An affected count of
// zero means the task does not exist for this owner.
func (s *TaskService) DeleteTask(ctx context.Context, id, userID string) error {
	deleted, err := s.repo.Delete(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if deleted == 0 {
		return fmt.Errorf("task with ID %q: %w", id, domain.ErrTaskNotFound)
	}

	s.invalidateCache(ctx, userID)
	s.logger.Info().Str("task_id", id).Str("user_id", userID).Msg("task deleted")
	return nil
}

// UpdateTaskStatus resolves the task through GetTaskByID (propagating its
// not-found error), persists the new status, and returns the updated task.
// status is assumed already admitted by domain.ParseStatus; no transition
// graph is enforced, so any admitted value may replace any other.
func (s *TaskService) UpdateTaskStatus(ctx context.Context, id string, status domain.TaskStatus, userID string) (*domain.Task, error) {
	task, err := s.GetTaskByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateStatus(ctx, id, userID, status); err != nil {
		return nil, fmt.Errorf("update task status: %w", err)
	}

	task.Status = status
	task.UpdatedAt = time.Now().UTC()

	s.invalidateCache(ctx, userID)
	s.logger.Info().
		Str("task_id", id).
		Str("user_id", userID).
		Str("status", string(status)).
		Msg("task status updated")
	return task, nil
}

func (s *TaskService) invalidateCache(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID).Msg("task cache invalidation failed")
	}
}
