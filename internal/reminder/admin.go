package reminder

import (
	"context"
	"fmt"
)

// RoleChecker answers whether an actor may run category administration.
type RoleChecker interface {
	IsAdmin(userID int64) bool
}

// RoleFunc adapts a plain function to RoleChecker.
type RoleFunc func(userID int64) bool

func (f RoleFunc) IsAdmin(userID int64) bool { return f(userID) }

// Admin gates category administration behind the role check. The check runs
// before any mutation; a rejected actor changes nothing.
type Admin struct {
	svc   *Service
	roles RoleChecker
}

func NewAdmin(svc *Service, roles RoleChecker) *Admin {
	return &Admin{svc: svc, roles: roles}
}

func (a *Admin) authorize(actor int64) error {
	if a.roles == nil || !a.roles.IsAdmin(actor) {
		return fmt.Errorf("%w: user %d is not an administrator", ErrUnauthorized, actor)
	}
	return nil
}

func (a *Admin) CreateCategory(ctx context.Context, actor int64, name string) (string, error) {
	if err := a.authorize(actor); err != nil {
		return "", err
	}
	return a.svc.createCategory(ctx, name)
}

func (a *Admin) RenameCategory(ctx context.Context, actor int64, key, newName string) error {
	if err := a.authorize(actor); err != nil {
		return err
	}
	return a.svc.renameCategory(ctx, key, newName)
}

func (a *Admin) DeleteCategory(ctx context.Context, actor int64, key string) error {
	if err := a.authorize(actor); err != nil {
		return err
	}
	return a.svc.deleteCategory(ctx, key)
}

func (a *Admin) AddSubcategory(ctx context.Context, actor int64, catKey, name string, kind Kind) (string, error) {
	if err := a.authorize(actor); err != nil {
		return "", err
	}
	return a.svc.addSubcategory(ctx, catKey, name, kind)
}

func (a *Admin) RenameSubcategory(ctx context.Context, actor int64, catKey, subKey, newName string) error {
	if err := a.authorize(actor); err != nil {
		return err
	}
	return a.svc.renameSubcategory(ctx, catKey, subKey, newName)
}

func (a *Admin) DeleteSubcategory(ctx context.Context, actor int64, catKey, subKey string) error {
	if err := a.authorize(actor); err != nil {
		return err
	}
	return a.svc.deleteSubcategory(ctx, catKey, subKey)
}

func (a *Admin) ConfigureFixedSubcategory(ctx context.Context, actor int64, catKey, subKey string, days, hours, minutes int, message string) error {
	if err := a.authorize(actor); err != nil {
		return err
	}
	return a.svc.configureFixed(ctx, catKey, subKey, days, hours, minutes, message)
}
