package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"taskbit/internal/model"
	"taskbit/internal/repository"
)

// Owns reports whether user owns task. There is no administrative override.
func Owns(task *model.Task, user *model.User) bool {
	return task != nil && user != nil && task.UserID == user.ID
}

// requireUser resolves requesterID to an enabled user.
func requireUser(ctx context.Context, store *repository.Store, requesterID uint) (*model.User, error) {
	user, err := store.Users.FindByID(ctx, requesterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(ErrNotFound, "user %d", requesterID)
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !user.Enabled {
		return nil, newError(ErrNotFound, "user %d", requesterID)
	}
	return user, nil
}

// ownedTask loads taskID and checks that user owns it.
func ownedTask(ctx context.Context, store *repository.Store, taskID uint, user *model.User) (*model.Task, error) {
	task, err := store.Tasks.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(ErrNotFound, "task %d", taskID)
		}
		return nil, fmt.Errorf("find task: %w", err)
	}
	if !Owns(task, user) {
		return nil, newError(ErrNotOwner, "task %d", taskID)
	}
	return task, nil
}

// authorizeTask resolves the requester and the task they must own.
func authorizeTask(ctx context.Context, store *repository.Store, taskID, requesterID uint) (*model.User, *model.Task, error) {
	user, err := requireUser(ctx, store, requesterID)
	if err != nil {
		return nil, nil, err
	}
	task, err := ownedTask(ctx, store, taskID, user)
	if err != nil {
		return nil, nil, err
	}
	return user, task, nil
}
