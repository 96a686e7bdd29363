//go:build integration

package template_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"crmcore/internal/notification/template"
	"crmcore/pkg/platform/sentinel"
	"crmcore/pkg/testutil/containers"
)

type TemplateStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *template.PostgresStore
}

func TestTemplateStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(TemplateStoreSuite))
}

func (s *TemplateStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = template.NewPostgres(s.postgres.DB)
}

func (s *TemplateStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "notification_templates"))
}

func (s *TemplateStoreSuite) TestUpsertOverwritesButKeepsCreatedAt() {
	ctx := context.Background()
	created := time.Now().UTC().Add(-time.Hour)

	s.Require().NoError(s.store.Upsert(ctx, &template.Template{
		Key:       "task_assigned",
		Text:      "v1",
		CreatedAt: created,
		UpdatedAt: created,
	}))

	later := time.Now().UTC()
	s.Require().NoError(s.store.Upsert(ctx, &template.Template{
		Key:       "task_assigned",
		Text:      "v2",
		CreatedAt: later,
		UpdatedAt: later,
	}))

	got, err := s.store.Find(ctx, "task_assigned")
	s.Require().NoError(err)
	s.Equal("v2", got.Text)
	s.WithinDuration(created, got.CreatedAt, time.Millisecond)
	s.WithinDuration(later, got.UpdatedAt, time.Millisecond)
}

func (s *TemplateStoreSuite) TestFindMissing() {
	_, err := s.store.Find(context.Background(), "ghost")
	s.True(errors.Is(err, sentinel.ErrNotFound))
}

func (s *TemplateStoreSuite) TestSeedDefaultsThroughRegistry() {
	ctx := context.Background()
	registry := template.NewRegistry(s.store)

	s.Require().NoError(registry.SeedDefaults(ctx))
	s.Require().NoError(registry.SeedDefaults(ctx))

	got, err := s.store.Find(ctx, "task_assigned")
	s.Require().NoError(err)
	s.Contains(got.Text, "{{task_title}}")
}
