package handlers_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/diagnosis/doctors-portal/internal/domain"
	"github.com/diagnosis/doctors-portal/pkg/auth"
)

func TestUpsertUserReturnsWorkingToken(t *testing.T) {
	f := newFixture()

	rec := doJSON(t, f, "PUT", "/user/alice@example.com", map[string]string{"name": "Alice"}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var out domain.UpsertUserResponse
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Token == "" {
		t.Fatal("no token issued")
	}

	claims, err := auth.Parse(out.Token, secret)
	if err != nil {
		t.Fatalf("Parse issued token: %v", err)
	}
	if claims.Email != "alice@example.com" {
		t.Errorf("token email = %q, want alice@example.com", claims.Email)
	}

	if f.users.users["alice@example.com"] == nil {
		t.Error("user not upserted")
	}

	// The issued token must actually open token-gated endpoints.
	list := doJSON(t, f, "GET", "/booking?patient=alice@example.com", nil, "Bearer "+out.Token)
	if list.Code != http.StatusOK {
		t.Errorf("issued token rejected: status = %d, want 200", list.Code)
	}
}

func TestListUsersRequiresToken(t *testing.T) {
	f := newFixture()
	f.users.users["alice@example.com"] = &domain.User{Email: "alice@example.com"}

	rec := doJSON(t, f, "GET", "/user", nil, "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no token: status = %d, want 401", rec.Code)
	}

	rec = doJSON(t, f, "GET", "/user", nil, bearer(t, "alice@example.com"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var users []domain.User
	if err := json.NewDecoder(rec.Body).Decode(&users); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(users) != 1 {
		t.Errorf("users = %d, want 1", len(users))
	}
}

func TestPromoteAdminGate(t *testing.T) {
	f := newFixture()
	f.users.users["admin@example.com"] = &domain.User{Email: "admin@example.com", Role: "admin"}
	f.users.users["bob@example.com"] = &domain.User{Email: "bob@example.com"}

	// Non-admin requester denied
	rec := doJSON(t, f, "PUT", "/user/admin/bob@example.com", nil, bearer(t, "bob@example.com"))
	if rec.Code != http.StatusForbidden {
		t.Errorf("non-admin: status = %d, want 403", rec.Code)
	}
	if f.users.users["bob@example.com"].Role == domain.RoleAdmin {
		t.Error("non-admin request still promoted the user")
	}

	// Admin requester promotes
	rec = doJSON(t, f, "PUT", "/user/admin/bob@example.com", nil, bearer(t, "admin@example.com"))
	if rec.Code != http.StatusOK {
		t.Fatalf("admin: status = %d, want 200", rec.Code)
	}
	if f.users.users["bob@example.com"].Role != domain.RoleAdmin {
		t.Error("user not promoted")
	}
}

func TestAdminCheck(t *testing.T) {
	f := newFixture()
	f.users.users["admin@example.com"] = &domain.User{Email: "admin@example.com", Role: "admin"}
	f.users.users["bob@example.com"] = &domain.User{Email: "bob@example.com", Role: "patient"}

	cases := []struct {
		email string
		want  bool
	}{
		{"admin@example.com", true},
		{"bob@example.com", false},
		{"ghost@example.com", false}, // missing record must not fault
	}
	for _, c := range cases {
		rec := doJSON(t, f, "GET", "/admin/"+c.email, nil, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status = %d, want 200", c.email, rec.Code)
		}
		var out domain.AdminCheckResponse
		if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if out.Admin != c.want {
			t.Errorf("%s: admin = %v, want %v", c.email, out.Admin, c.want)
		}
	}
}

func TestAdminCheckStoreError(t *testing.T) {
	f := newFixture()
	f.users.findErr = errors.New("connection reset")

	rec := doJSON(t, f, "GET", "/admin/admin@example.com", nil, "")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}
