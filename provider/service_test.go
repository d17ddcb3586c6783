package provider

import (
	"context"
	"errors"
	"testing"
)

type fakeRepository struct {
	providers map[int64]Provider
	nextID    int64
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{providers: make(map[int64]Provider), nextID: 1}
}

func (f *fakeRepository) List(_ context.Context) ([]Provider, error) {
	out := []Provider{}
	for _, p := range f.providers {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeRepository) GetByID(_ context.Context, id int64) (Provider, error) {
	p, ok := f.providers[id]
	if !ok {
		return Provider{}, ErrNotFound
	}
	return p, nil
}

func (f *fakeRepository) Create(_ context.Context, params CreateParams) (Provider, error) {
	p := Provider{
		ID:     f.nextID,
		UserID: params.UserID,
		Name:   params.Name,
		Email:  params.Email,
		Phone:  params.Phone,
	}
	f.nextID++
	f.providers[p.ID] = p
	return p, nil
}

func (f *fakeRepository) Update(_ context.Context, id int64, params UpdateParams) (Provider, error) {
	p, ok := f.providers[id]
	if !ok {
		return Provider{}, ErrNotFound
	}
	p.Name = params.Name
	p.Email = params.Email
	p.Phone = params.Phone
	if params.ProfileImageURL != nil {
		p.ProfileImageURL = params.ProfileImageURL
	}
	f.providers[id] = p
	return p, nil
}

func (f *fakeRepository) Delete(_ context.Context, id int64) error {
	if _, ok := f.providers[id]; !ok {
		return ErrNotFound
	}
	delete(f.providers, id)
	return nil
}

func (f *fakeRepository) SetImageURL(_ context.Context, id int64, url string) (Provider, error) {
	p, ok := f.providers[id]
	if !ok {
		return Provider{}, ErrNotFound
	}
	p.ProfileImageURL = &url
	f.providers[id] = p
	return p, nil
}

func TestCreateProvider(t *testing.T) {
	svc := NewService(newFakeRepository())

	p, err := svc.Create(context.Background(), CreateParams{
		UserID: 1,
		Name:   "Acme Electronics",
		Email:  "contact@acme.example",
		Phone:  "+34600111222",
	})
	if err != nil {
		t.Fatalf("create provider: %v", err)
	}
	if p.ID == 0 {
		t.Fatal("expected assigned provider id")
	}
	if p.UserID != 1 {
		t.Fatalf("expected user id 1, got %d", p.UserID)
	}
}

func TestCreateProviderValidation(t *testing.T) {
	svc := NewService(newFakeRepository())

	if _, err := svc.Create(context.Background(), CreateParams{UserID: 1, Name: "  "}); err == nil {
		t.Fatal("expected error for empty name")
	}
	if _, err := svc.Create(context.Background(), CreateParams{Name: "Acme"}); err == nil {
		t.Fatal("expected error for missing user id")
	}
}

func TestUpdateProviderKeepsImageWhenOmitted(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)

	created, err := svc.Create(context.Background(), CreateParams{UserID: 1, Name: "Acme"})
	if err != nil {
		t.Fatalf("create provider: %v", err)
	}
	if _, err := svc.SetImage(context.Background(), created.ID, "/images/provider/provider_1_abc.png"); err != nil {
		t.Fatalf("set image: %v", err)
	}

	updated, err := svc.Update(context.Background(), created.ID, UpdateParams{Name: "Acme Electronics", Email: "new@acme.example"})
	if err != nil {
		t.Fatalf("update provider: %v", err)
	}
	if updated.Name != "Acme Electronics" {
		t.Fatalf("unexpected name %q", updated.Name)
	}
	if updated.ProfileImageURL == nil || *updated.ProfileImageURL != "/images/provider/provider_1_abc.png" {
		t.Fatalf("expected profile image kept, got %v", updated.ProfileImageURL)
	}
}

func TestUpdateMissingProvider(t *testing.T) {
	svc := NewService(newFakeRepository())

	_, err := svc.Update(context.Background(), 42, UpdateParams{Name: "Acme"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteProvider(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)

	created, err := svc.Create(context.Background(), CreateParams{UserID: 1, Name: "Acme"})
	if err != nil {
		t.Fatalf("create provider: %v", err)
	}

	if err := svc.Delete(context.Background(), created.ID); err != nil {
		t.Fatalf("delete provider: %v", err)
	}
	if err := svc.Delete(context.Background(), created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}
