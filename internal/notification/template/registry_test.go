package template

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crmcore/pkg/platform/sentinel"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		values map[string]string
		want   string
	}{
		{
			name:   "all placeholders resolved",
			text:   `You have been assigned a new task: "{{task_title}}" in project "{{project_name}}".`,
			values: map[string]string{"task_title": "Fix bug", "project_name": "Alpha"},
			want:   `You have been assigned a new task: "Fix bug" in project "Alpha".`,
		},
		{
			name:   "missing value renders empty",
			text:   `Payment of {{amount}} received for project "{{project_name}}".`,
			values: map[string]string{"project_name": "Alpha"},
			want:   `Payment of  received for project "Alpha".`,
		},
		{
			name: "nil values map",
			text: `Goal "{{goal_title}}" has been marked as completed.`,
			want: `Goal "" has been marked as completed.`,
		},
		{
			name:   "extra values ignored",
			text:   "no placeholders here",
			values: map[string]string{"task_title": "Fix bug"},
			want:   "no placeholders here",
		},
		{
			name:   "whitespace inside markers",
			text:   "Hello {{ name }}",
			values: map[string]string{"name": "Ada"},
			want:   "Hello Ada",
		},
		{
			name:   "repeated placeholder",
			text:   "{{x}} and {{x}}",
			values: map[string]string{"x": "twice"},
			want:   "twice and twice",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Render(tt.text, tt.values)
			assert.Equal(t, tt.want, got)
			assert.NotContains(t, got, "{{", "markers must never leak")
		})
	}
}

func TestRegistry_UpsertNormalizesKey(t *testing.T) {
	reg := NewRegistry(NewInMemoryStore())
	ctx := context.Background()

	require.NoError(t, reg.Upsert(ctx, "  Task_Assigned ", "v1", "first"))

	got, err := reg.Find(ctx, "task_assigned")
	require.NoError(t, err)
	assert.Equal(t, "task_assigned", got.Key)
	assert.Equal(t, "v1", got.Text)

	// Lookup is normalized the same way.
	got, err = reg.Find(ctx, "TASK_ASSIGNED")
	require.NoError(t, err)
	assert.Equal(t, "v1", got.Text)
}

func TestRegistry_UpsertOverwrites(t *testing.T) {
	reg := NewRegistry(NewInMemoryStore())
	ctx := context.Background()

	require.NoError(t, reg.Upsert(ctx, "task_assigned", "v1", "first"))
	require.NoError(t, reg.Upsert(ctx, "task_assigned", "v2", "second"))

	got, err := reg.Find(ctx, "task_assigned")
	require.NoError(t, err)
	assert.Equal(t, "v2", got.Text)
	assert.Equal(t, "second", got.Description)
}

func TestRegistry_UpsertRejectsEmptyKey(t *testing.T) {
	reg := NewRegistry(NewInMemoryStore())
	err := reg.Upsert(context.Background(), "   ", "text", "")
	assert.Error(t, err)
}

func TestRegistry_FindUnknownKey(t *testing.T) {
	reg := NewRegistry(NewInMemoryStore())

	_, err := reg.Find(context.Background(), "nonexistent_event")
	require.Error(t, err)
	assert.True(t, errors.Is(err, sentinel.ErrUnknownTemplate))
}

func TestRegistry_SeedDefaultsIsIdempotent(t *testing.T) {
	reg := NewRegistry(NewInMemoryStore())
	ctx := context.Background()

	require.NoError(t, reg.SeedDefaults(ctx))
	require.NoError(t, reg.SeedDefaults(ctx))

	got, err := reg.Find(ctx, "task_assigned")
	require.NoError(t, err)

	rendered := Render(got.Text, map[string]string{
		"task_title":   "Fix bug",
		"project_name": "Alpha",
	})
	assert.Equal(t, `You have been assigned a new task: "Fix bug" in project "Alpha".`, rendered)
}
