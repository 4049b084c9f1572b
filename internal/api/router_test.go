package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/isdelr/despesas-be/internal/auth"
	"github.com/isdelr/despesas-be/internal/database"
	"github.com/isdelr/despesas-be/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
)

type RouterTestSuite struct {
	suite.Suite
	router http.Handler
	deps   Dependencies
}

func (s *RouterTestSuite) SetupTest() {
	path := filepath.Join(s.T().TempDir(), "test.db")
	s.Require().NoError(database.Migrate(path))
	db, err := database.New(path)
	s.Require().NoError(err)
	s.T().Cleanup(func() { db.Close() })

	tokens, err := auth.NewTokenService("test-secret", time.Hour)
	s.Require().NoError(err)

	s.deps = Dependencies{
		DB:                 db,
		Tokens:             tokens,
		Users:              services.NewUserService(db, auth.NewPasswordHasher(bcrypt.MinCost)),
		Categories:         services.NewCategoryService(db),
		Expenses:           services.NewExpenseService(db),
		Audit:              services.NewAuditService(db, nil),
		CORSOrigins:        []string{"http://localhost:3000"},
		LoginRatePerMinute: 100,
	}
	s.router = NewRouter(s.deps)
}

func (s *RouterTestSuite) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// login signs up a fresh account and returns its token.
func (s *RouterTestSuite) login(name, email string) string {
	rec := s.do(http.MethodPost, "/signup", "", map[string]string{"name": name, "email": email, "password": "segredo"})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(http.MethodPost, "/login", "", map[string]string{"email": email, "password": "segredo"})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	return decode[map[string]string](s.T(), rec)["token"]
}

func (s *RouterTestSuite) createCategory(token, name string) string {
	rec := s.do(http.MethodPost, "/categorias", token, map[string]string{"name": name})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	return decode[map[string]string](s.T(), rec)["id"]
}

func (s *RouterTestSuite) createExpense(token, description string, amount float64, categoryID, date string) *httptest.ResponseRecorder {
	return s.do(http.MethodPost, "/despesas", token, map[string]interface{}{
		"description": description,
		"amount":      amount,
		"categoryId":  categoryID,
		"date":        date,
	})
}

func (s *RouterTestSuite) TestSignupAndLogin() {
	rec := s.do(http.MethodPost, "/signup", "", map[string]string{"name": "Ana", "email": "Ana@Example.com", "password": "segredo"})
	s.Require().Equal(http.StatusCreated, rec.Code)
	body := decode[map[string]string](s.T(), rec)
	s.NotEmpty(body["id"])
	s.Equal("Ana", body["name"])
	s.Equal("ana@example.com", body["email"])
	s.NotContains(rec.Body.String(), "segredo")

	rec = s.do(http.MethodPost, "/signup", "", map[string]string{"name": "Ana 2", "email": "ana@example.com", "password": "x"})
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Contains(decode[map[string]string](s.T(), rec)["erro"], "cadastrado")

	rec = s.do(http.MethodPost, "/login", "", map[string]string{"email": "ana@example.com", "password": "segredo"})
	s.Require().Equal(http.StatusOK, rec.Code)
	login := decode[map[string]string](s.T(), rec)
	s.Equal("Ana", login["name"])

	claims, err := s.deps.Tokens.Verify(login["token"])
	s.Require().NoError(err)
	s.Equal(body["id"], claims.AccountID)

	rec = s.do(http.MethodGet, "/me", login["token"], nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Equal("ana@example.com", decode[map[string]interface{}](s.T(), rec)["email"])
}

func (s *RouterTestSuite) TestLoginFailuresAreIndistinguishable() {
	s.login("Ana", "ana@example.com")

	wrongPassword := s.do(http.MethodPost, "/login", "", map[string]string{"email": "ana@example.com", "password": "errada"})
	unknownEmail := s.do(http.MethodPost, "/login", "", map[string]string{"email": "ninguem@example.com", "password": "segredo"})

	s.Equal(http.StatusBadRequest, wrongPassword.Code)
	s.Equal(wrongPassword.Code, unknownEmail.Code)
	s.Equal(wrongPassword.Body.String(), unknownEmail.Body.String())
}

func (s *RouterTestSuite) TestAuthGate() {
	rec := s.do(http.MethodGet, "/categorias", "", nil)
	s.Equal(http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodGet, "/categorias", "not-a-token", nil)
	s.Equal(http.StatusForbidden, rec.Code)

	foreign, err := auth.NewTokenService("another-secret", time.Hour)
	s.Require().NoError(err)
	token, err := foreign.Issue("someone", "Someone")
	s.Require().NoError(err)
	rec = s.do(http.MethodGet, "/despesas", token, nil)
	s.Equal(http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodGet, "/healthz", "", nil)
	s.Equal(http.StatusOK, rec.Code)
}

func (s *RouterTestSuite) TestCategoryLifecycle() {
	token := s.login("Ana", "ana@example.com")

	rec := s.do(http.MethodPost, "/categorias", token, map[string]string{"name": "   "})
	s.Equal(http.StatusBadRequest, rec.Code)
	s.NotEmpty(decode[map[string]string](s.T(), rec)["erro"])

	id := s.createCategory(token, "  Mercado ")

	rec = s.do(http.MethodPut, "/categorias/"+id, token, map[string]string{"name": "Feira"})
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Equal("Feira", decode[map[string]string](s.T(), rec)["name"])

	rec = s.do(http.MethodPut, "/categorias/nope", token, map[string]string{"name": "Feira"})
	s.Equal(http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodGet, "/categorias", token, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	list := decode[[]map[string]string](s.T(), rec)
	s.Require().Len(list, 1)
	s.Equal("Feira", list[0]["name"])

	rec = s.do(http.MethodDelete, "/categorias/"+id, token, nil)
	s.Equal(http.StatusNoContent, rec.Code)
}

func (s *RouterTestSuite) TestDeleteCategoryWithExpensesConflicts() {
	token := s.login("Ana", "ana@example.com")
	id := s.createCategory(token, "Mercado")
	s.Require().Equal(http.StatusCreated, s.createExpense(token, "Pão", 7.5, id, "2024-03-01").Code)

	rec := s.do(http.MethodDelete, "/categorias/"+id, token, nil)
	s.Equal(http.StatusBadRequest, rec.Code)
	s.NotEmpty(decode[map[string]string](s.T(), rec)["erro"])

	rec = s.do(http.MethodGet, "/categorias", token, nil)
	s.Len(decode[[]map[string]string](s.T(), rec), 1)
	rec = s.do(http.MethodGet, "/despesas", token, nil)
	s.Len(decode[[]map[string]interface{}](s.T(), rec), 1)
}

func (s *RouterTestSuite) TestExpenseLifecycle() {
	token := s.login("Ana", "ana@example.com")
	cat := s.createCategory(token, "Mercado")

	rec := s.createExpense(token, "Pão", 10.005, cat, "2024-03-01")
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[map[string]interface{}](s.T(), rec)
	s.Equal(10.01, created["amount"])
	s.Equal("Mercado", created["category"])
	s.Equal("2024-03-01T12:00:00Z", created["date"])
	id := created["id"].(string)

	for _, amount := range []float64{0, -3} {
		rec = s.createExpense(token, "Inválida", amount, cat, "2024-03-01")
		s.Equal(http.StatusBadRequest, rec.Code, "amount %v", amount)
	}
	rec = s.createExpense(token, "Sem categoria", 5, "", "2024-03-01")
	s.Equal(http.StatusBadRequest, rec.Code)
	rec = s.createExpense(token, "Categoria fantasma", 5, "missing", "2024-03-01")
	s.Equal(http.StatusBadRequest, rec.Code)
	rec = s.createExpense(token, "Data ruim", 5, cat, "ontem")
	s.Equal(http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPut, "/despesas/"+id, token, map[string]interface{}{
		"description": "Pão francês", "amount": 12, "categoryId": cat, "date": "2024-03-02",
	})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.Equal("Pão francês", decode[map[string]interface{}](s.T(), rec)["description"])

	rec = s.do(http.MethodPut, "/despesas/"+id, token, map[string]interface{}{
		"description": "Pão", "amount": 12, "categoryId": "missing", "date": "2024-03-02",
	})
	s.Equal(http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodPut, "/despesas/missing", token, map[string]interface{}{
		"description": "Pão", "amount": 12, "categoryId": cat, "date": "2024-03-02",
	})
	s.Equal(http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodDelete, "/despesas/"+id, token, nil)
	s.Equal(http.StatusNoContent, rec.Code)
	rec = s.do(http.MethodDelete, "/despesas/"+id, token, nil)
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *RouterTestSuite) TestExpensesAreOwnerScoped() {
	ana := s.login("Ana", "ana@example.com")
	bia := s.login("Bia", "bia@example.com")
	cat := s.createCategory(ana, "Mercado")

	s.Require().Equal(http.StatusCreated, s.createExpense(ana, "Da Ana", 10, cat, "2024-03-01").Code)
	s.Require().Equal(http.StatusCreated, s.createExpense(bia, "Da Bia", 20, cat, "2024-03-01").Code)

	rec := s.do(http.MethodGet, "/despesas?inicio=2024-03-01&fim=2024-03-01", ana, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	list := decode[[]map[string]interface{}](s.T(), rec)
	s.Require().Len(list, 1)
	s.Equal("Da Ana", list[0]["description"])

	rec = s.do(http.MethodGet, "/dashboard", bia, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	totals := decode[services.CategoryTotals](s.T(), rec)
	s.Equal([]string{"Mercado"}, totals.Labels)
	s.Equal([]float64{20}, totals.Totals)
}

func (s *RouterTestSuite) TestDateWindow() {
	token := s.login("Ana", "ana@example.com")
	cat := s.createCategory(token, "Mercado")
	for _, d := range []string{"2024-02-28", "2024-03-01", "2024-03-31T23:59:59Z", "2024-04-01"} {
		s.Require().Equal(http.StatusCreated, s.createExpense(token, d, 1, cat, d).Code)
	}

	rec := s.do(http.MethodGet, "/despesas?inicio=2024-03-01&fim=2024-03-31", token, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	list := decode[[]map[string]interface{}](s.T(), rec)
	s.Require().Len(list, 2)
	s.Equal("2024-03-31T23:59:59Z", list[0]["description"])
	s.Equal("2024-03-01", list[1]["description"])

	rec = s.do(http.MethodGet, "/despesas?inicio=2024-03-01", token, nil)
	s.Len(decode[[]map[string]interface{}](s.T(), rec), 4)

	rec = s.do(http.MethodGet, "/despesas?inicio=2024-04-01&fim=2024-03-01", token, nil)
	s.Equal(http.StatusBadRequest, rec.Code)
	rec = s.do(http.MethodGet, "/dashboard?inicio=abc&fim=2024-03-01", token, nil)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *RouterTestSuite) TestDashboardAggregatesInFirstEncounterOrder() {
	token := s.login("Ana", "ana@example.com")
	a := s.createCategory(token, "A")
	b := s.createCategory(token, "B")
	s.Require().Equal(http.StatusCreated, s.createExpense(token, "a1", 3, a, "2024-03-01").Code)
	s.Require().Equal(http.StatusCreated, s.createExpense(token, "b1", 5, b, "2024-03-02").Code)
	s.Require().Equal(http.StatusCreated, s.createExpense(token, "a2", 10, a, "2024-03-03").Code)

	rec := s.do(http.MethodGet, "/dashboard?inicio=2024-03-01&fim=2024-03-31", token, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	totals := decode[services.CategoryTotals](s.T(), rec)
	s.Equal([]string{"A", "B"}, totals.Labels)
	s.Equal([]float64{13, 5}, totals.Totals)
}

func (s *RouterTestSuite) TestLogsAreOwnScopedAndNewestFirst() {
	ana := s.login("Ana", "ana@example.com")
	bia := s.login("Bia", "bia@example.com")
	cat := s.createCategory(ana, "Mercado")
	s.Require().Equal(http.StatusCreated, s.createExpense(ana, "Pão", 5, cat, "2024-03-01").Code)

	rec := s.do(http.MethodGet, "/logs", ana, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	entries := decode[[]map[string]interface{}](s.T(), rec)
	s.Require().Len(entries, 3)
	s.Equal(services.ActionExpenseCreate, entries[0]["action"])
	s.Equal(services.ActionCategoryCreate, entries[1]["action"])
	s.Equal(services.ActionSignup, entries[2]["action"])

	rec = s.do(http.MethodGet, "/logs", bia, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Len(decode[[]map[string]interface{}](s.T(), rec), 1)
}

func (s *RouterTestSuite) TestMutationsSurviveAuditFailure() {
	token := s.login("Ana", "ana@example.com")
	_, err := s.deps.DB.Exec("DROP TABLE audit_log")
	s.Require().NoError(err)

	cat := s.createCategory(token, "Mercado")
	rec := s.createExpense(token, "Pão", 5, cat, "2024-03-01")
	s.Require().Equal(http.StatusCreated, rec.Code)
	id := decode[map[string]interface{}](s.T(), rec)["id"].(string)

	rec = s.do(http.MethodDelete, "/despesas/"+id, token, nil)
	s.Equal(http.StatusNoContent, rec.Code)

	rec = s.do(http.MethodGet, "/logs", token, nil)
	s.Equal(http.StatusInternalServerError, rec.Code)
	s.Equal("erro interno", decode[map[string]string](s.T(), rec)["erro"])
}

func (s *RouterTestSuite) TestMalformedBody() {
	token := s.login("Ana", "ana@example.com")
	req := httptest.NewRequest(http.MethodPost, "/categorias", bytes.NewBufferString("{"))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func TestRouterTestSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}

func TestCredentialEndpointsAreRateLimited(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	require.NoError(t, database.Migrate(path))
	db, err := database.New(path)
	require.NoError(t, err)
	defer db.Close()
	tokens, err := auth.NewTokenService("test-secret", time.Hour)
	require.NoError(t, err)

	router := NewRouter(Dependencies{
		DB:                 db,
		Tokens:             tokens,
		Users:              services.NewUserService(db, auth.NewPasswordHasher(bcrypt.MinCost)),
		Categories:         services.NewCategoryService(db),
		Expenses:           services.NewExpenseService(db),
		Audit:              services.NewAuditService(db, nil),
		LoginRatePerMinute: 2,
	})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString(`{"email":"a@b.c","password":"x"}`))
		req.RemoteAddr = "203.0.113.7:5555"
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusBadRequest, http.StatusBadRequest, http.StatusTooManyRequests}, codes)
}

func TestRateLimitIgnoresForwardedFor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	require.NoError(t, database.Migrate(path))
	db, err := database.New(path)
	require.NoError(t, err)
	defer db.Close()
	tokens, err := auth.NewTokenService("test-secret", time.Hour)
	require.NoError(t, err)

	router := NewRouter(Dependencies{
		DB:                 db,
		Tokens:             tokens,
		Users:              services.NewUserService(db, auth.NewPasswordHasher(bcrypt.MinCost)),
		Categories:         services.NewCategoryService(db),
		Expenses:           services.NewExpenseService(db),
		Audit:              services.NewAuditService(db, nil),
		LoginRatePerMinute: 2,
	})

	codes := make([]int, 0, 6)
	for i := 0; i < 6; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString(`{"email":"a@b.c","password":"x"}`))
		req.RemoteAddr = "203.0.113.7:5555"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("10.0.0.%d", i))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{
		http.StatusBadRequest, http.StatusBadRequest,
		http.StatusTooManyRequests, http.StatusTooManyRequests, http.StatusTooManyRequests, http.StatusTooManyRequests,
	}, codes)
}
