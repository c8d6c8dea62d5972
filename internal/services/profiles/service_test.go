package profiles

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Usergeee443/nikoh/internal/domain/enums"
	"github.com/Usergeee443/nikoh/internal/domain/model"
	pgrepo "github.com/Usergeee443/nikoh/internal/repo/postgres"
)

type fakeProfileStore struct {
	profile    model.Profile
	hasProfile bool
	lastUpsert *model.Profile
	lastActive *bool
}

func (f *fakeProfileStore) Upsert(_ context.Context, p model.Profile) (model.Profile, error) {
	p.IsComplete = true
	f.lastUpsert = &p
	f.profile = p
	f.hasProfile = true
	return p, nil
}

func (f *fakeProfileStore) FindByUserID(context.Context, int64) (model.Profile, error) {
	if !f.hasProfile {
		return model.Profile{}, pgrepo.ErrProfileNotFound
	}
	return f.profile, nil
}

func (f *fakeProfileStore) SetActive(_ context.Context, _ int64, active bool) (model.Profile, error) {
	if !f.hasProfile {
		return model.Profile{}, pgrepo.ErrProfileNotFound
	}
	f.lastActive = &active
	f.profile.IsActive = active
	return f.profile, nil
}

type fakeTariffStore struct {
	tariff model.UserTariff
	valid  bool
}

func (f *fakeTariffStore) CurrentValid(context.Context, int64, time.Time) (model.UserTariff, error) {
	if !f.valid {
		return model.UserTariff{}, pgrepo.ErrTariffNotFound
	}
	return f.tariff, nil
}

func validInput() SaveInput {
	return SaveInput{
		Name:          "Aziz",
		Gender:        "male",
		BirthYear:     1995,
		Region:        "Tashkent",
		Nationality:   "Uzbek",
		MaritalStatus: "single",
	}
}

func TestSaveNormalizesAndMarksComplete(t *testing.T) {
	store := &fakeProfileStore{}
	svc := NewService(store, &fakeTariffStore{})
	svc.now = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }

	in := validInput()
	in.Name = "  Aziz  "
	profile, err := svc.Save(context.Background(), 1, in)
	if err != nil {
		t.Fatalf("save profile: %v", err)
	}

	if profile.Name != "Aziz" {
		t.Fatalf("name not trimmed: %q", profile.Name)
	}
	if profile.Gender != enums.GenderMale {
		t.Fatalf("unexpected gender: %s", profile.Gender)
	}
	if !profile.IsComplete {
		t.Fatalf("saved profile must be complete")
	}
	if store.lastUpsert.IsActive {
		t.Fatalf("save must not activate the profile")
	}
}

func TestSavePersistsPartnerPreferences(t *testing.T) {
	store := &fakeProfileStore{}
	svc := NewService(store, &fakeTariffStore{})
	svc.now = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }

	in := validInput()
	in.PartnerAgeMin = 20
	in.PartnerAgeMax = 30
	in.PartnerRegion = "Samarqand"
	in.PartnerMaritalStatus = " single "
	in.PartnerReligiousLevel = "practicing"

	profile, err := svc.Save(context.Background(), 1, in)
	if err != nil {
		t.Fatalf("save profile: %v", err)
	}
	if profile.PartnerMaritalStatus != "single" {
		t.Fatalf("partner marital status not persisted: %q", profile.PartnerMaritalStatus)
	}
	if profile.PartnerAgeMin != 20 || profile.PartnerAgeMax != 30 {
		t.Fatalf("partner age range not persisted: %d-%d", profile.PartnerAgeMin, profile.PartnerAgeMax)
	}
	if profile.PartnerRegion != "Samarqand" || profile.PartnerReligiousLevel != "practicing" {
		t.Fatalf("partner preferences not persisted: %+v", profile)
	}
}

func TestSaveValidation(t *testing.T) {
	svc := NewService(&fakeProfileStore{}, &fakeTariffStore{})
	svc.now = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }

	tests := []struct {
		name   string
		mutate func(*SaveInput)
	}{
		{name: "empty name", mutate: func(in *SaveInput) { in.Name = "  " }},
		{name: "unknown gender", mutate: func(in *SaveInput) { in.Gender = "other" }},
		{name: "too young", mutate: func(in *SaveInput) { in.BirthYear = 2015 }},
		{name: "ancient", mutate: func(in *SaveInput) { in.BirthYear = 1900 }},
		{name: "no region", mutate: func(in *SaveInput) { in.Region = "" }},
		{name: "inverted partner range", mutate: func(in *SaveInput) { in.PartnerAgeMin = 40; in.PartnerAgeMax = 20 }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)
			if _, err := svc.Save(context.Background(), 1, in); !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestToggleActivationRequiresTariff(t *testing.T) {
	store := &fakeProfileStore{
		hasProfile: true,
		profile:    model.Profile{UserID: 1, IsComplete: true, IsActive: false},
	}
	svc := NewService(store, &fakeTariffStore{valid: false})

	_, err := svc.Toggle(context.Background(), 1)
	if !errors.Is(err, ErrEntitlementRequired) {
		t.Fatalf("expected ErrEntitlementRequired, got %v", err)
	}
	if store.lastActive != nil {
		t.Fatalf("profile must stay untouched without a tariff")
	}
}

func TestToggleActivatesWithTariff(t *testing.T) {
	store := &fakeProfileStore{
		hasProfile: true,
		profile:    model.Profile{UserID: 1, IsComplete: true, IsActive: false},
	}
	svc := NewService(store, &fakeTariffStore{valid: true})

	profile, err := svc.Toggle(context.Background(), 1)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !profile.IsActive {
		t.Fatalf("profile must be active after toggle")
	}
}

func TestToggleDeactivationNeedsNoTariff(t *testing.T) {
	store := &fakeProfileStore{
		hasProfile: true,
		profile:    model.Profile{UserID: 1, IsComplete: true, IsActive: true},
	}
	svc := NewService(store, &fakeTariffStore{valid: false})

	profile, err := svc.Toggle(context.Background(), 1)
	if err != nil {
		t.Fatalf("toggle off: %v", err)
	}
	if profile.IsActive {
		t.Fatalf("profile must be hidden after toggle off")
	}
}

func TestGetIncludesTariffSnapshot(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	top := now.Add(48 * time.Hour)
	store := &fakeProfileStore{
		hasProfile: true,
		profile:    model.Profile{UserID: 1, IsComplete: true},
	}
	svc := NewService(store, &fakeTariffStore{
		valid: true,
		tariff: model.UserTariff{
			TariffID:       "VIP",
			RequestsLeft:   14,
			ListingExpires: now.Add(20 * 24 * time.Hour),
			TopExpires:     &top,
			IsActive:       true,
		},
	})
	svc.now = func() time.Time { return now }

	view, err := svc.Get(context.Background(), 1)
	if err != nil {
		t.Fatalf("get profile view: %v", err)
	}
	if !view.HasActiveTariff || !view.IsTop {
		t.Fatalf("unexpected entitlement snapshot: %+v", view)
	}
	if view.RequestsLeft != 14 {
		t.Fatalf("unexpected requests left: %d", view.RequestsLeft)
	}
}

func TestGetMissingProfile(t *testing.T) {
	svc := NewService(&fakeProfileStore{}, &fakeTariffStore{})

	_, err := svc.Get(context.Background(), 1)
	if !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}
