package modelconfig

import (
	"context"
	"testing"

	"engage_server/core/domain"
	"engage_server/pkg/apperr"

	"github.com/google/uuid"
)

type fakeConfigRepo struct {
	configs []*domain.ModelConfig
	nextID  int64
}

func (f *fakeConfigRepo) Create(ctx context.Context, cfg *domain.ModelConfig) error {
	f.nextID++
	cfg.ID = f.nextID
	f.configs = append(f.configs, cfg)
	return nil
}

func (f *fakeConfigRepo) GetByID(ctx context.Context, tenantID uuid.UUID, id int64) (*domain.ModelConfig, error) {
	for _, c := range f.configs {
		if c.TenantID == tenantID && c.ID == id {
			return c, nil
		}
	}
	return nil, nil
}

func (f *fakeConfigRepo) GetActive(ctx context.Context, tenantID uuid.UUID) (*domain.ModelConfig, error) {
	for _, c := range f.configs {
		if c.TenantID == tenantID && c.IsActive {
			return c, nil
		}
	}
	return nil, nil
}

func (f *fakeConfigRepo) List(ctx context.Context, tenantID uuid.UUID) ([]*domain.ModelConfig, error) {
	var out []*domain.ModelConfig
	for _, c := range f.configs {
		if c.TenantID == tenantID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeConfigRepo) Activate(ctx context.Context, tenantID uuid.UUID, id int64) error {
	for _, c := range f.configs {
		if c.TenantID == tenantID {
			c.IsActive = c.ID == id
		}
	}
	return nil
}

func (f *fakeConfigRepo) UpdateLearnings(ctx context.Context, tenantID uuid.UUID, id int64, instructions string, metrics domain.ModelMetrics) error {
	return nil
}

func (f *fakeConfigRepo) ListFeedbackTenants(ctx context.Context) ([]uuid.UUID, error) {
	return nil, nil
}

func adminUser() domain.AuthUser {
	return domain.AuthUser{ID: uuid.New(), TenantID: uuid.New(), Role: domain.RoleAdmin}
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(&fakeConfigRepo{})
	user := adminUser()

	tests := []struct {
		name string
		req  CreateRequest
	}{
		{"temperature too high", CreateRequest{Temperature: 2.5}},
		{"temperature negative", CreateRequest{Temperature: -0.1}},
		{"learning rate above one", CreateRequest{LearningRate: 1.5}},
		{"weight out of range", CreateRequest{Weights: &domain.ContextWeights{ProductCatalog: 1.2}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), user, &tt.req)
			if !apperr.IsCode(err, apperr.CodeValidationFailed) {
				t.Fatalf("err = %v, want VALIDATION_FAILED", err)
			}
		})
	}
}

func TestCreateDefaults(t *testing.T) {
	svc := NewService(&fakeConfigRepo{})

	cfg, err := svc.Create(context.Background(), adminUser(), &CreateRequest{
		SystemInstructions: "You help sales agents.",
		Temperature:        0.7,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if cfg.IsActive {
		t.Error("new config must start inactive")
	}
	if cfg.Language.Primary != "en" {
		t.Errorf("primary language = %q, want en", cfg.Language.Primary)
	}
	if cfg.MaxLength != 500 {
		t.Errorf("max length = %d, want default 500", cfg.MaxLength)
	}
}

func TestCreateForbiddenForAgents(t *testing.T) {
	svc := NewService(&fakeConfigRepo{})
	agent := domain.AuthUser{ID: uuid.New(), TenantID: uuid.New(), Role: domain.RoleAgent}

	if _, err := svc.Create(context.Background(), agent, &CreateRequest{Temperature: 0.5}); !apperr.IsCode(err, apperr.CodeForbidden) {
		t.Fatalf("err = %v, want FORBIDDEN", err)
	}
}

func TestActivateSwapLeavesOneActive(t *testing.T) {
	repo := &fakeConfigRepo{}
	svc := NewService(repo)
	user := adminUser()

	first, err := svc.Create(context.Background(), user, &CreateRequest{Temperature: 0.5})
	if err != nil {
		t.Fatalf("Create first: %v", err)
	}
	second, err := svc.Create(context.Background(), user, &CreateRequest{Temperature: 0.9})
	if err != nil {
		t.Fatalf("Create second: %v", err)
	}

	if _, err := svc.Activate(context.Background(), user, first.ID); err != nil {
		t.Fatalf("Activate first: %v", err)
	}
	if _, err := svc.Activate(context.Background(), user, second.ID); err != nil {
		t.Fatalf("Activate second: %v", err)
	}

	active := 0
	for _, c := range repo.configs {
		if c.IsActive {
			active++
		}
	}
	if active != 1 {
		t.Fatalf("active configs = %d, want exactly 1", active)
	}

	got, err := svc.GetActive(context.Background(), user)
	if err != nil {
		t.Fatalf("GetActive: %v", err)
	}
	if got.ID != second.ID {
		t.Errorf("active id = %d, want %d", got.ID, second.ID)
	}
}

func TestActivateUnknownConfig(t *testing.T) {
	svc := NewService(&fakeConfigRepo{})

	if _, err := svc.Activate(context.Background(), adminUser(), 99); !apperr.IsCode(err, apperr.CodeNotFound) {
		t.Fatalf("err = %v, want NOT_FOUND", err)
	}
}
