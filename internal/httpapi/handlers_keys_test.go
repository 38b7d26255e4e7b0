package httpapi

import (
	"net/http"
	"testing"
)

func TestKeyAdministration(t *testing.T) {
	gen := &stubGenerator{text: `{"files":[{"path":"a.tsx","content":"x"}]}`}
	e := newTestEnv(t, gen, nil)

	// non-admin users cannot manage keys
	resp := e.do(t, http.MethodGet, "/v1/keys", nil, asUser())
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("non-admin list expected 403, got %d", resp.StatusCode)
	}

	resp = e.do(t, http.MethodPost, "/v1/keys", map[string]string{
		"name":   "primary gemini",
		"secret": "AIzaSy-fake",
	}, asAdmin())
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create expected 201, got %d", resp.StatusCode)
	}
	created := decodeBody(t, resp)
	id, _ := created["id"].(string)
	if id == "" {
		t.Fatalf("expected key id, got %v", created)
	}
	if created["provider"] != "gemini" {
		t.Fatalf("expected default provider gemini, got %v", created["provider"])
	}
	if _, leaked := created["secret"]; leaked {
		t.Fatal("secret must never be returned")
	}

	resp = e.do(t, http.MethodGet, "/v1/keys", nil, asAdmin())
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list expected 200, got %d", resp.StatusCode)
	}
	keys := decodeBody(t, resp)["keys"].([]any)
	if len(keys) != 1 {
		t.Fatalf("expected one key, got %d", len(keys))
	}
	if _, leaked := keys[0].(map[string]any)["secret"]; leaked {
		t.Fatal("secret must never be listed")
	}

	// the stored key works end to end
	genBody := map[string]string{"prompt": "a todo app", "apiKeyId": id}
	if resp := e.do(t, http.MethodPost, "/v1/generate", genBody, asUser()); resp.StatusCode != http.StatusOK {
		t.Fatalf("generate with created key expected 200, got %d", resp.StatusCode)
	}

	resp = e.do(t, http.MethodPut, "/v1/keys/"+id, map[string]any{"isActive": false}, asAdmin())
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("deactivate expected 200, got %d", resp.StatusCode)
	}

	resp = e.do(t, http.MethodDelete, "/v1/keys/"+id, nil, asAdmin())
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete expected 204, got %d", resp.StatusCode)
	}
	resp = e.do(t, http.MethodDelete, "/v1/keys/"+id, nil, asAdmin())
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("double delete expected 404, got %d", resp.StatusCode)
	}
}

func TestCreateKeyValidation(t *testing.T) {
	e := newTestEnv(t, &stubGenerator{}, nil)

	resp := e.do(t, http.MethodPost, "/v1/keys", map[string]string{"name": "x"}, asAdmin())
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing secret expected 400, got %d", resp.StatusCode)
	}
	resp = e.do(t, http.MethodPost, "/v1/keys", map[string]string{"secret": "x"}, asAdmin())
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing name expected 400, got %d", resp.StatusCode)
	}
}
