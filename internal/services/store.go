// store.go
//
// A coaching nutrition data service: foods, recipes, meals and diet plans
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of macrosdb.
// macrosdb is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// macrosdb is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with macrosdb.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

// Package services is the persistence gateway for foods, recipes, exercises and diet plans.
package services

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/localnerve/macrosdb/internal/metrics"
	"github.com/localnerve/macrosdb/internal/nutrition"
	"github.com/localnerve/macrosdb/internal/policy"
	"github.com/localnerve/macrosdb/internal/types"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Store reads and writes the nutrition records. It holds the application connection pool
// for its lifetime; the pool itself is closed by the owner with database.Close.
type Store struct {
	db    *gorm.DB
	cache FoodCache
	log   *logrus.Logger
}

// Option configures a Store
type Option func(*Store)

// WithFoodCache enables read-through caching of foods
func WithFoodCache(cache FoodCache) Option {
	return func(s *Store) {
		if cache != nil {
			s.cache = cache
		}
	}
}

// WithLogger sets the logger used for warnings and storage failures
func WithLogger(log *logrus.Logger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

// NewStore creates a Store over an open connection pool
func NewStore(db *gorm.DB, opts ...Option) *Store {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	s := &Store{
		db:    db,
		cache: noopCache{},
		log:   discard,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DB returns the underlying pool
func (s *Store) DB() *gorm.DB {
	return s.db
}

func (s *Store) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// ListFilter narrows and pages a list query
type ListFilter struct {
	Search   string
	Category string
	Limit    int
	Offset   int
}

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

func (f ListFilter) limit() int {
	switch {
	case f.Limit <= 0:
		return defaultPageSize
	case f.Limit > maxPageSize:
		return maxPageSize
	}
	return f.Limit
}

func (f ListFilter) offset() int {
	if f.Offset < 0 {
		return 0
	}
	return f.Offset
}

// Page returns the limit and offset a list query actually applies
func (f ListFilter) Page() (int, int) {
	return f.limit(), f.offset()
}

func (f ListFilter) pattern() string {
	return "%" + strings.ToLower(strings.TrimSpace(f.Search)) + "%"
}

// visible restricts a query on an owned table to the rows actor may see
func visible(q *gorm.DB, actor policy.Actor) *gorm.DB {
	if actor.IsSuperAdmin() {
		return q
	}
	return q.Where("is_system = ? OR created_by = ?", true, actor.ID)
}

// fail converts a storage error into the gateway error taxonomy. Domain errors pass
// through untouched; everything else is a PersistenceError for op.
func (s *Store) fail(op string, err error) error {
	if err == nil || isDomainError(err) {
		return err
	}
	metrics.PersistenceError(op)
	s.log.WithError(err).WithField("op", op).Error("storage operation failed")
	return &types.PersistenceError{Op: op, Err: err}
}

// notFound maps gorm.ErrRecordNotFound for a single row lookup
func notFound(err error, resource string, id any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &types.NotFoundError{Resource: resource, ID: id}
	}
	return err
}

func isDomainError(err error) bool {
	var (
		validation  *types.ValidationError
		invalidUnit *types.InvalidUnitError
		missing     *types.NotFoundError
		forbidden   *types.ForbiddenError
		conflict    *types.ConflictError
		persistence *types.PersistenceError
		custom      *types.CustomError
		mismatch    *nutrition.CalorieMismatchError
	)
	return errors.As(err, &validation) ||
		errors.As(err, &invalidUnit) ||
		errors.As(err, &missing) ||
		errors.As(err, &forbidden) ||
		errors.As(err, &conflict) ||
		errors.As(err, &persistence) ||
		errors.As(err, &custom) ||
		errors.As(err, &mismatch)
}

func checkMutate(resource policy.Owned, actor policy.Actor, kind string, id any) error {
	if !policy.CanMutate(resource, actor) {
		return &types.ForbiddenError{Resource: kind, ID: id}
	}
	return nil
}

func ownedBy(actor policy.Actor, system bool) (bool, *string, error) {
	if system {
		if !policy.CanCreateSystem(actor) {
			return false, nil, &types.ForbiddenError{Resource: "system content", ID: "new"}
		}
		return true, nil, nil
	}
	if actor.ID == "" {
		return false, nil, &types.ForbiddenError{Resource: "content", ID: "new"}
	}
	id := actor.ID
	return false, &id, nil
}
