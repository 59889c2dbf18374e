package service

import (
	"context"
	"strings"
	"testing"

	leadsrepo "estate_crm_backend/internal/leads/repository"
	"estate_crm_backend/internal/partners/repository"
	"estate_crm_backend/platform/apperr"
	"estate_crm_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeStore struct {
	partners map[uuid.UUID]*repository.Partner
	byCode   map[string]*repository.Partner

	conflictsLeft int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		partners: make(map[uuid.UUID]*repository.Partner),
		byCode:   make(map[string]*repository.Partner),
	}
}

func (f *fakeStore) Create(_ context.Context, p *repository.Partner) error {
	if f.conflictsLeft > 0 {
		f.conflictsLeft--
		return apperr.Conflict("referral code already in use")
	}
	if _, exists := f.byCode[p.ReferralCode]; exists {
		return apperr.Conflict("referral code already in use")
	}
	copied := *p
	f.partners[p.ID] = &copied
	f.byCode[p.ReferralCode] = &copied
	return nil
}

func (f *fakeStore) Get(_ context.Context, id uuid.UUID) (*repository.Partner, error) {
	p, ok := f.partners[id]
	if !ok {
		return nil, apperr.NotFound("partner not found")
	}
	copied := *p
	return &copied, nil
}

func (f *fakeStore) FindByReferralCode(_ context.Context, code string) (*repository.Partner, error) {
	p, ok := f.byCode[code]
	if !ok || p.Status != repository.StatusActive {
		return nil, nil
	}
	copied := *p
	return &copied, nil
}

func (f *fakeStore) List(_ context.Context) ([]repository.Partner, error) {
	out := make([]repository.Partner, 0, len(f.partners))
	for _, p := range f.partners {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeStore) Update(_ context.Context, id uuid.UUID, update repository.PartnerUpdate) (*repository.Partner, error) {
	p, ok := f.partners[id]
	if !ok {
		return nil, apperr.NotFound("partner not found")
	}
	if update.Status != nil {
		p.Status = *update.Status
	}
	copied := *p
	return &copied, nil
}

type fakeLeadSource struct {
	leads []leadsrepo.Lead
}

func (f *fakeLeadSource) ListLeadsByPartner(context.Context, uuid.UUID) ([]leadsrepo.Lead, error) {
	return f.leads, nil
}

func TestCreateIssuesReferralCode(t *testing.T) {
	store := newFakeStore()
	svc := New(store, logger.New("development"))

	p, err := svc.Create(context.Background(), CreateInput{
		Name:  "Sharma Realty",
		Phone: "+919876543210",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if !strings.HasPrefix(p.ReferralCode, "CP-") {
		t.Errorf("referral code %q missing CP- prefix", p.ReferralCode)
	}
	if len(p.ReferralCode) != len("CP-")+referralLength {
		t.Errorf("referral code %q has wrong length", p.ReferralCode)
	}
	if p.Status != repository.StatusActive {
		t.Errorf("status = %q, want active", p.Status)
	}
}

func TestCreateRetriesOnCodeCollision(t *testing.T) {
	store := newFakeStore()
	store.conflictsLeft = 2
	svc := New(store, logger.New("development"))

	p, err := svc.Create(context.Background(), CreateInput{Name: "Sharma Realty", Phone: "+919876543210"})
	if err != nil {
		t.Fatalf("Create() must retry past collisions: %v", err)
	}
	if p.ReferralCode == "" {
		t.Error("expected a referral code after retries")
	}
}

func TestFindByReferralCodeUnknownIsNil(t *testing.T) {
	svc := New(newFakeStore(), logger.New("development"))

	p, err := svc.FindByReferralCode(context.Background(), "CP-NOPE")
	if err != nil {
		t.Fatalf("unknown code must not error: %v", err)
	}
	if p != nil {
		t.Errorf("expected nil partner, got %+v", p)
	}
}

func TestStatsCountsConversions(t *testing.T) {
	store := newFakeStore()
	svc := New(store, logger.New("development"))

	p, err := svc.Create(context.Background(), CreateInput{Name: "Sharma Realty", Phone: "+919876543210"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	svc.AttachLeadSource(&fakeLeadSource{leads: []leadsrepo.Lead{
		{Status: "converted"},
		{Status: "new"},
		{Status: "lost"},
		{Status: "converted"},
	}})

	stats, err := svc.Stats(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.TotalLeads != 4 || stats.Converted != 2 {
		t.Fatalf("stats = %+v, want 4 total / 2 converted", stats)
	}
	if stats.ConversionRate != 50 {
		t.Errorf("conversion rate = %v, want 50", stats.ConversionRate)
	}
}
