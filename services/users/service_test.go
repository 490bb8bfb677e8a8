package users_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"releaseradar/services/users"
)

func TestServiceStartsEmpty(t *testing.T) {
	svc, err := users.NewService(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	if list := svc.List(); len(list) != 0 {
		t.Fatalf("expected no users on first run, got %d", len(list))
	}
}

func TestServiceCreateRenameAndDelete(t *testing.T) {
	svc, err := users.NewService(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	created, err := svc.Create("Evening Watcher")
	if err != nil {
		t.Fatalf("create returned error: %v", err)
	}

	if created.ID == "" {
		t.Fatalf("expected created user to have id")
	}

	renamed, err := svc.Rename(created.ID, "Night Owl")
	if err != nil {
		t.Fatalf("rename returned error: %v", err)
	}

	if renamed.Name != "Night Owl" {
		t.Fatalf("expected renamed user to have updated name, got %q", renamed.Name)
	}

	if err := svc.Delete(created.ID); err != nil {
		t.Fatalf("delete returned error: %v", err)
	}

	if svc.Exists(created.ID) {
		t.Fatalf("expected user to be deleted")
	}
}

func TestCreateRequiresName(t *testing.T) {
	svc, err := users.NewService(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	if _, err := svc.Create("   "); !errors.Is(err, users.ErrNameRequired) {
		t.Fatalf("expected ErrNameRequired, got %v", err)
	}
}

func TestPinLifecycle(t *testing.T) {
	svc, err := users.NewService(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	user, err := svc.Create("Guarded")
	if err != nil {
		t.Fatalf("create returned error: %v", err)
	}

	// No PIN set, anything passes.
	if err := svc.VerifyPin(user.ID, "whatever"); err != nil {
		t.Fatalf("expected pinless profile to accept any input, got %v", err)
	}

	if _, err := svc.SetPin(user.ID, "123"); !errors.Is(err, users.ErrPinTooShort) {
		t.Fatalf("expected ErrPinTooShort, got %v", err)
	}

	updated, err := svc.SetPin(user.ID, "4821")
	if err != nil {
		t.Fatalf("set pin returned error: %v", err)
	}
	if !updated.HasPin() {
		t.Fatal("expected user to report a PIN after SetPin")
	}

	if err := svc.VerifyPin(user.ID, "4821"); err != nil {
		t.Fatalf("expected correct PIN to verify, got %v", err)
	}
	if err := svc.VerifyPin(user.ID, "0000"); !errors.Is(err, users.ErrPinInvalid) {
		t.Fatalf("expected ErrPinInvalid for wrong PIN, got %v", err)
	}

	cleared, err := svc.ClearPin(user.ID)
	if err != nil {
		t.Fatalf("clear pin returned error: %v", err)
	}
	if cleared.HasPin() {
		t.Fatal("expected PIN to be cleared")
	}
}

func TestPinSurvivesRestart(t *testing.T) {
	dir := t.TempDir()

	svc, err := users.NewService(dir)
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	user, err := svc.Create("Guarded")
	if err != nil {
		t.Fatalf("create returned error: %v", err)
	}
	if _, err := svc.SetPin(user.ID, "4821"); err != nil {
		t.Fatalf("set pin returned error: %v", err)
	}

	reopened, err := users.NewService(dir)
	if err != nil {
		t.Fatalf("failed to reopen service: %v", err)
	}
	if err := reopened.VerifyPin(user.ID, "4821"); err != nil {
		t.Fatalf("expected PIN to survive restart, got %v", err)
	}
}

func TestPinHashNeverInAPIResponse(t *testing.T) {
	dir := t.TempDir()

	svc, err := users.NewService(dir)
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	user, err := svc.Create("Guarded")
	if err != nil {
		t.Fatalf("create returned error: %v", err)
	}
	if _, err := svc.SetPin(user.ID, "4821"); err != nil {
		t.Fatalf("set pin returned error: %v", err)
	}

	// The stored file holds the hash; the API model must not leak it.
	data, err := os.ReadFile(filepath.Join(dir, "users.json"))
	if err != nil {
		t.Fatalf("failed to read users file: %v", err)
	}
	if !strings.Contains(string(data), "pinHash") {
		t.Fatal("expected pin hash to be persisted")
	}

	got, _ := svc.Get(user.ID)
	encoded, err := got.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal returned error: %v", err)
	}
	if strings.Contains(string(encoded), "pinHash") || strings.Contains(string(encoded), got.PinHash) {
		t.Fatal("API representation must not include the pin hash")
	}
	if !strings.Contains(string(encoded), `"hasPin":true`) {
		t.Fatalf("expected hasPin flag in API representation, got %s", encoded)
	}
}
