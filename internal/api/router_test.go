package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/psgpraveen/PolicyPilot/internal/auth"
	"github.com/psgpraveen/PolicyPilot/internal/services"
	"github.com/psgpraveen/PolicyPilot/internal/store/memory"
	"github.com/psgpraveen/PolicyPilot/pkg/metrics"
)

func newTestRouter(t *testing.T) *Router {
	t.Helper()

	logger := zap.NewNop()
	collector := metrics.NewMetricsCollector()
	mem := memory.NewStore()

	tokens, err := auth.NewManager("test-secret", time.Hour)
	require.NoError(t, err)

	authService := services.NewAuthService(mem, tokens, logger, collector, 6)
	clientService := services.NewClientService(mem, logger, collector)
	categoryService := services.NewCategoryService(mem, logger, collector)
	policyService := services.NewPolicyService(mem, logger, collector)

	router := NewRouter(logger, collector, tokens, authService, clientService, categoryService, policyService, "http://localhost:9002")
	router.SetupRoutes()
	return router
}

func doJSON(t *testing.T, router *Router, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	router.Engine().ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body), "body=%s", rr.Body.String())
	return body
}

func signupAndLogin(t *testing.T, router *Router, name, email, password string) string {
	t.Helper()

	rr := doJSON(t, router, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"name": name, "email": email, "password": password,
	})
	require.Equal(t, http.StatusCreated, rr.Code, "signup body=%s", rr.Body.String())

	rr = doJSON(t, router, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": email, "password": password,
	})
	require.Equal(t, http.StatusOK, rr.Code, "login body=%s", rr.Body.String())

	body := decodeBody(t, rr)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

type policyForm struct {
	clientID   string
	categoryID string
	policyName string
	issueDate  string
	expiryDate string
	amount     string
	fileName   string
	fileType   string
	fileBytes  []byte
}

func doPolicyForm(t *testing.T, router *Router, method, path, token string, form policyForm) *httptest.ResponseRecorder {
	t.Helper()

	var buffer bytes.Buffer
	writer := multipart.NewWriter(&buffer)
	require.NoError(t, writer.WriteField("clientId", form.clientID))
	require.NoError(t, writer.WriteField("categoryId", form.categoryID))
	require.NoError(t, writer.WriteField("policyName", form.policyName))
	require.NoError(t, writer.WriteField("issueDate", form.issueDate))
	require.NoError(t, writer.WriteField("expiryDate", form.expiryDate))
	require.NoError(t, writer.WriteField("amount", form.amount))

	if form.fileName != "" {
		header := make(map[string][]string)
		header["Content-Disposition"] = []string{fmt.Sprintf(`form-data; name="attachment"; filename=%q`, form.fileName)}
		header["Content-Type"] = []string{form.fileType}
		part, err := writer.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write(form.fileBytes)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(method, path, &buffer)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	rr := httptest.NewRecorder()
	router.Engine().ServeHTTP(rr, req)
	return rr
}

func validForm() policyForm {
	return policyForm{
		clientID:   "client-1",
		categoryID: "category-1",
		policyName: "Term Life Cover",
		issueDate:  "2024-01-01",
		expiryDate: "2025-01-01",
		amount:     "1200.75",
	}
}

func TestSignupLoginEmptyClientList(t *testing.T) {
	router := newTestRouter(t)

	token := signupAndLogin(t, router, "Jane Doe", "jane@x.com", "secret1")

	rr := doJSON(t, router, http.MethodGet, "/api/clients", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	body := decodeBody(t, rr)
	assert.Equal(t, true, body["success"])
	clients, ok := body["clients"].([]interface{})
	require.True(t, ok)
	assert.Empty(t, clients)
}

func TestSignupValidationDetails(t *testing.T) {
	router := newTestRouter(t)

	rr := doJSON(t, router, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"name": "J", "email": "bad", "password": "x",
	})
	require.Equal(t, http.StatusBadRequest, rr.Code)

	body := decodeBody(t, rr)
	details, ok := body["details"].([]interface{})
	require.True(t, ok)
	assert.Len(t, details, 3)
}

func TestDuplicateSignupConflicts(t *testing.T) {
	router := newTestRouter(t)

	first := doJSON(t, router, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"name": "Jane Doe", "email": "jane@x.com", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, first.Code)

	second := doJSON(t, router, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"name": "Jane Clone", "email": "jane@x.com", "password": "secret2",
	})
	require.Equal(t, http.StatusBadRequest, second.Code)

	body := decodeBody(t, second)
	assert.Contains(t, body["error"], "already exists")
}

func TestLoginFailureMessageIsUniform(t *testing.T) {
	router := newTestRouter(t)
	signupAndLogin(t, router, "Jane Doe", "jane@x.com", "secret1")

	unknown := doJSON(t, router, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "nobody@x.com", "password": "secret1",
	})
	wrong := doJSON(t, router, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "jane@x.com", "password": "wrong",
	})

	require.Equal(t, http.StatusUnauthorized, unknown.Code)
	require.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, decodeBody(t, unknown)["error"], decodeBody(t, wrong)["error"])
}

func TestMissingTokenRejected(t *testing.T) {
	router := newTestRouter(t)

	rr := doJSON(t, router, http.MethodGet, "/api/clients", "", nil)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "No token provided", decodeBody(t, rr)["error"])
}

func TestInvalidTokenRejected(t *testing.T) {
	router := newTestRouter(t)

	rr := doJSON(t, router, http.MethodGet, "/api/clients", "garbage-token", nil)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "Invalid or expired token", decodeBody(t, rr)["error"])
}

func TestLogoutIsStatelessAck(t *testing.T) {
	router := newTestRouter(t)

	rr := doJSON(t, router, http.MethodPost, "/api/auth/logout", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, true, decodeBody(t, rr)["success"])
}

func TestCrossUserDeleteForbidden(t *testing.T) {
	router := newTestRouter(t)

	tokenA := signupAndLogin(t, router, "User A", "a@x.com", "secret1")
	tokenB := signupAndLogin(t, router, "User B", "b@x.com", "secret2")

	created := doJSON(t, router, http.MethodPost, "/api/clients", tokenA, map[string]string{
		"name": "Acme Corp", "email": "contact@acme.com", "phone": "5551234567",
	})
	require.Equal(t, http.StatusCreated, created.Code)
	clientID, _ := decodeBody(t, created)["clientId"].(string)
	require.NotEmpty(t, clientID)

	deleted := doJSON(t, router, http.MethodDelete, "/api/clients/"+clientID, tokenB, nil)
	require.Equal(t, http.StatusForbidden, deleted.Code)
	assert.Equal(t, "Access denied", decodeBody(t, deleted)["error"])

	// Still retrievable by its owner.
	listed := doJSON(t, router, http.MethodGet, "/api/clients", tokenA, nil)
	require.Equal(t, http.StatusOK, listed.Code)
	clients := decodeBody(t, listed)["clients"].([]interface{})
	require.Len(t, clients, 1)
}

func TestListingsNeverLeakAcrossOwners(t *testing.T) {
	router := newTestRouter(t)

	tokenA := signupAndLogin(t, router, "User A", "a@x.com", "secret1")
	tokenB := signupAndLogin(t, router, "User B", "b@x.com", "secret2")

	for i := 0; i < 3; i++ {
		rr := doJSON(t, router, http.MethodPost, "/api/categories", tokenA, map[string]string{
			"name": fmt.Sprintf("A Category %d", i),
		})
		require.Equal(t, http.StatusCreated, rr.Code)
		rr = doJSON(t, router, http.MethodPost, "/api/categories", tokenB, map[string]string{
			"name": fmt.Sprintf("B Category %d", i),
		})
		require.Equal(t, http.StatusCreated, rr.Code)
	}

	listed := doJSON(t, router, http.MethodGet, "/api/categories", tokenA, nil)
	require.Equal(t, http.StatusOK, listed.Code)
	categories := decodeBody(t, listed)["categories"].([]interface{})
	require.Len(t, categories, 3)
	for _, raw := range categories {
		entry := raw.(map[string]interface{})
		assert.Contains(t, entry["name"], "A Category")
	}
}

func TestPolicyWithAttachmentRoundTrip(t *testing.T) {
	router := newTestRouter(t)
	token := signupAndLogin(t, router, "Jane Doe", "jane@x.com", "secret1")

	fileBytes := []byte{0x25, 0x50, 0x44, 0x46, 0x2d, 0x00, 0xfe, 0xff, 0x10}
	form := validForm()
	form.fileName = "cover.pdf"
	form.fileType = "application/pdf"
	form.fileBytes = fileBytes

	created := doPolicyForm(t, router, http.MethodPost, "/api/policies", token, form)
	require.Equal(t, http.StatusCreated, created.Code, "body=%s", created.Body.String())

	body := decodeBody(t, created)
	policyID, _ := body["policyId"].(string)
	require.NotEmpty(t, policyID)
	assert.Equal(t, "/api/policies/"+policyID+"/attachment", body["fileUrl"])

	req := httptest.NewRequest(http.MethodGet, "/api/policies/"+policyID+"/attachment", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	router.Engine().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/pdf", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "cover.pdf")
	assert.Equal(t, fileBytes, rr.Body.Bytes())
}

func TestPolicyZipAttachmentRejectedBeforePersistence(t *testing.T) {
	router := newTestRouter(t)
	token := signupAndLogin(t, router, "Jane Doe", "jane@x.com", "secret1")

	form := validForm()
	form.fileName = "archive.zip"
	form.fileType = "application/zip"
	form.fileBytes = []byte("zip bytes")

	created := doPolicyForm(t, router, http.MethodPost, "/api/policies", token, form)
	require.Equal(t, http.StatusBadRequest, created.Code)
	assert.Contains(t, decodeBody(t, created)["error"], "file type")

	listed := doJSON(t, router, http.MethodGet, "/api/policies", token, nil)
	policies := decodeBody(t, listed)["policies"].([]interface{})
	assert.Empty(t, policies)
}

func TestPolicyNonFiniteAmountRejected(t *testing.T) {
	router := newTestRouter(t)
	token := signupAndLogin(t, router, "Jane Doe", "jane@x.com", "secret1")

	for _, amount := range []string{"NaN", "Inf", "Infinity"} {
		form := validForm()
		form.amount = amount

		created := doPolicyForm(t, router, http.MethodPost, "/api/policies", token, form)
		require.Equal(t, http.StatusBadRequest, created.Code, "amount %q", amount)
		assert.Contains(t, decodeBody(t, created)["error"], "positive number")
	}

	// A poisoned amount would make this listing unserializable.
	listed := doJSON(t, router, http.MethodGet, "/api/policies", token, nil)
	require.Equal(t, http.StatusOK, listed.Code)
	assert.Empty(t, decodeBody(t, listed)["policies"])
}

func TestPolicyMalformedMultipartRejected(t *testing.T) {
	router := newTestRouter(t)
	token := signupAndLogin(t, router, "Jane Doe", "jane@x.com", "secret1")

	req := httptest.NewRequest(http.MethodPost, "/api/policies", bytes.NewReader([]byte("not a multipart body")))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=deadbeef")
	req.Header.Set("Authorization", "Bearer "+token)

	rr := httptest.NewRecorder()
	router.Engine().ServeHTTP(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Invalid request body", decodeBody(t, rr)["error"])
}

func TestPolicyExpiryBeforeIssueRejected(t *testing.T) {
	router := newTestRouter(t)
	token := signupAndLogin(t, router, "Jane Doe", "jane@x.com", "secret1")

	form := validForm()
	form.issueDate = "2024-01-01"
	form.expiryDate = "2023-01-01"

	created := doPolicyForm(t, router, http.MethodPost, "/api/policies", token, form)
	require.Equal(t, http.StatusBadRequest, created.Code)
	assert.Contains(t, decodeBody(t, created)["error"], "after issue date")
}

func TestPolicyListShapesAttachmentFields(t *testing.T) {
	router := newTestRouter(t)
	token := signupAndLogin(t, router, "Jane Doe", "jane@x.com", "secret1")

	plain := doPolicyForm(t, router, http.MethodPost, "/api/policies", token, validForm())
	require.Equal(t, http.StatusCreated, plain.Code)

	withFile := validForm()
	withFile.policyName = "Attached Cover"
	withFile.fileName = "scan.png"
	withFile.fileType = "image/png"
	withFile.fileBytes = []byte("png bytes")
	attached := doPolicyForm(t, router, http.MethodPost, "/api/policies", token, withFile)
	require.Equal(t, http.StatusCreated, attached.Code)

	listed := doJSON(t, router, http.MethodGet, "/api/policies", token, nil)
	require.Equal(t, http.StatusOK, listed.Code)
	policies := decodeBody(t, listed)["policies"].([]interface{})
	require.Len(t, policies, 2)

	for _, raw := range policies {
		entry := raw.(map[string]interface{})
		if entry["policyName"] == "Attached Cover" {
			assert.Equal(t, true, entry["hasAttachment"])
			assert.NotNil(t, entry["attachmentUrl"])
		} else {
			assert.Equal(t, false, entry["hasAttachment"])
			assert.Nil(t, entry["attachmentUrl"])
		}
	}
}

func TestUpdateMissingPolicyNotFound(t *testing.T) {
	router := newTestRouter(t)
	token := signupAndLogin(t, router, "Jane Doe", "jane@x.com", "secret1")

	rr := doPolicyForm(t, router, http.MethodPut, "/api/policies/missing-id", token, validForm())
	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Policy not found", decodeBody(t, rr)["error"])
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rr := doJSON(t, router, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "OK", decodeBody(t, rr)["status"])
}

func TestUnknownRoute(t *testing.T) {
	router := newTestRouter(t)

	rr := doJSON(t, router, http.MethodGet, "/api/unknown", "", nil)
	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Route not found", decodeBody(t, rr)["error"])
}

func TestMetricsEndpointReportsActivity(t *testing.T) {
	router := newTestRouter(t)
	signupAndLogin(t, router, "Jane Doe", "jane@x.com", "secret1")

	rr := doJSON(t, router, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	body := decodeBody(t, rr)
	counters, ok := body["counters"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, counters, "auth.signup")
	assert.Contains(t, counters, "auth.login")
}
