package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"spent_api/internal/config"
	"spent_api/internal/db"
	"spent_api/internal/domain"
	"spent_api/internal/events"
	"spent_api/internal/repository"
	"spent_api/internal/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// recorder collects emitted subjects
type recorder struct {
	mu       sync.Mutex
	subjects []string
}

func (r *recorder) Publish(_ context.Context, subject string, _ any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subjects = append(r.subjects, subject)
	return nil
}

type testEnv struct {
	engine *gin.Engine
	repo   *repository.SpentRepository
	events *recorder
}

func newEngine(store SpentStore, cache *utils.Cache, pub events.Publisher) *gin.Engine {
	r := gin.New()
	g := r.Group("/api/spent")
	g.GET("/last_categories", LastCategoriesHandler(store))
	g.GET("/all_categories", AllCategoriesHandler(store, cache))
	g.GET("/last_descriptions", LastDescriptionsHandler(store))
	g.GET("/all_descriptions", AllDescriptionsHandler(store, cache))
	g.POST("/create", CreateSpentHandler(store, cache, pub))
	g.PUT("/edit/:id", EditSpentHandler(store, cache, pub))
	g.DELETE("/delete/:id", DeleteSpentHandler(store, cache, pub))
	g.GET("/filter", FilterSpentHandler(store))
	g.POST("/copy_month", CopyMonthHandler(store, cache, pub))
	g.GET("/breakdown_month", BreakdownMonthHandler(store, cache))
	g.GET("/breakdown_year", BreakdownYearHandler(store, cache))
	g.GET("/balance", BalanceHandler(store, cache))
	return r
}

func newTestEnv(t *testing.T, cache *utils.Cache) *testEnv {
	t.Helper()
	gdb, err := db.Open(&config.Config{DBDriver: config.DriverSQLite, DBPath: ":memory:", IsProd: true})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	repo := repository.NewSpentRepository(gdb)
	rec := &recorder{}
	return &testEnv{engine: newEngine(repo, cache, rec), repo: repo, events: rec}
}

func fixClock(t *testing.T, at time.Time) {
	t.Helper()
	prev := now
	now = func() time.Time { return at }
	t.Cleanup(func() { now = prev })
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func errorOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, w)["error"]
}

func (e *testEnv) create(t *testing.T, body string) domain.SpentResponse {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/spent/create", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[domain.SpentResponse](t, w)
}

func TestCreateDefaultsToNow(t *testing.T) {
	fixClock(t, time.Date(2024, time.May, 10, 13, 14, 15, 999, time.UTC))
	env := newTestEnv(t, nil)

	got := env.create(t, `{"description":"Coffee","category":"Food","amount":-12.5}`)
	assert.NotZero(t, got.ID)
	assert.Equal(t, "Coffee", *got.Description)
	assert.Equal(t, "Food", *got.Category)
	assert.Equal(t, "-12.50", got.Amount)
	assert.Equal(t, "2024-05-10 13:14:15", got.Date)
	assert.Equal(t, 5, got.Month)
	assert.Equal(t, 2024, got.Year)
	assert.Equal(t, []string{events.SubjectCreated}, env.events.subjects)

	stored, err := env.repo.FindByID(context.Background(), got.ID)
	require.NoError(t, err)
	assert.Equal(t, "-12.50", stored.Amount.StringFixed(2))
}

func TestCreateDerivesAndOverridesPeriod(t *testing.T) {
	env := newTestEnv(t, nil)

	derived := env.create(t, `{"amount":"250","date":"2023-11-02T08:30:00"}`)
	assert.Equal(t, "2023-11-02 08:30:00", derived.Date)
	assert.Equal(t, 11, derived.Month)
	assert.Equal(t, 2023, derived.Year)
	assert.Nil(t, derived.Description)
	assert.Nil(t, derived.Category)

	explicit := env.create(t, `{"amount":10,"date":"2024-07-15","month":3}`)
	assert.Equal(t, "2024-07-15 00:00:00", explicit.Date)
	assert.Equal(t, 3, explicit.Month)
	assert.Equal(t, 2024, explicit.Year)

	numeric := env.create(t, `{"amount":1,"description":42,"date":"2024-01-01 10:00:00","year":"2020"}`)
	assert.Equal(t, "42", *numeric.Description)
	assert.Equal(t, 2020, numeric.Year)
}

func TestCreateValidation(t *testing.T) {
	env := newTestEnv(t, nil)
	cases := []struct {
		name string
		body string
		want string
	}{
		{"not json", `{"amount":`, "Invalid JSON data"},
		{"empty object", `{}`, "Invalid JSON data"},
		{"array", `[1,2]`, "Invalid JSON data"},
		{"trailing", `{"amount":1} {}`, "Invalid JSON data"},
		{"missing amount", `{"description":"x"}`, "Amount is required and must be numeric"},
		{"null amount", `{"amount":null}`, "Amount is required and must be numeric"},
		{"text amount", `{"amount":"abc"}`, "Amount is required and must be numeric"},
		{"bad date", `{"amount":1,"date":"yesterday"}`, "Invalid date format"},
		{"date not string", `{"amount":1,"date":20240101}`, "Invalid date format"},
		{"month range", `{"amount":1,"month":13}`, "Month must be between 1 and 12"},
		{"year range", `{"amount":1,"year":1899}`, "Year must be between 1900 and 9999"},
		{"composite description", `{"amount":1,"description":{"a":1}}`, "Description must be a string"},
		{"composite category", `{"amount":1,"category":["a"]}`, "Category must be a string"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/api/spent/create", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tc.want, errorOf(t, w))
		})
	}

	all, err := env.repo.Filter(context.Background(), int(time.Now().Month()), time.Now().Year(), nil)
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Empty(t, env.events.subjects)
}

func TestEdit(t *testing.T) {
	env := newTestEnv(t, nil)
	created := env.create(t, `{"description":"Rent","category":"Home","amount":-800,"date":"2024-01-31 09:00:00"}`)
	path := "/api/spent/edit/" + jsonID(created.ID)

	w := env.do(t, http.MethodPut, path, `{"amount":"-850.5","category":null}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got := decode[domain.SpentResponse](t, w)
	assert.Equal(t, "-850.50", got.Amount)
	assert.Equal(t, "Home", *got.Category)
	assert.Equal(t, "Rent", *got.Description)
	assert.Equal(t, 1, got.Month)

	w = env.do(t, http.MethodPut, path, `{"date":"2024-03-05 10:00:00"}`)
	require.Equal(t, http.StatusOK, w.Code)
	got = decode[domain.SpentResponse](t, w)
	assert.Equal(t, 3, got.Month)
	assert.Equal(t, 2024, got.Year)

	w = env.do(t, http.MethodPut, path, `{"month":7}`)
	require.Equal(t, http.StatusOK, w.Code)
	got = decode[domain.SpentResponse](t, w)
	assert.Equal(t, 7, got.Month)
	assert.Equal(t, "2024-03-05 10:00:00", got.Date)

	w = env.do(t, http.MethodPut, path, `{"amount":"ten"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Amount must be numeric", errorOf(t, w))

	w = env.do(t, http.MethodPut, path, `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid JSON data", errorOf(t, w))

	stored, err := env.repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "-850.50", stored.Amount.StringFixed(2))
	assert.Equal(t, []string{events.SubjectCreated, events.SubjectUpdated, events.SubjectUpdated, events.SubjectUpdated}, env.events.subjects)
}

func TestEditMissing(t *testing.T) {
	env := newTestEnv(t, nil)
	for _, path := range []string{"/api/spent/edit/999", "/api/spent/edit/0", "/api/spent/edit/abc"} {
		w := env.do(t, http.MethodPut, path, `{"amount":1}`)
		assert.Equal(t, http.StatusNotFound, w.Code, path)
		assert.Equal(t, "Spent entry not found", errorOf(t, w))
	}
}

func TestDelete(t *testing.T) {
	env := newTestEnv(t, nil)
	created := env.create(t, `{"amount":5,"date":"2024-02-02"}`)
	path := "/api/spent/delete/" + jsonID(created.ID)

	w := env.do(t, http.MethodDelete, path, "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]any](t, w)
	assert.Equal(t, "Spent entry deleted successfully", body["message"])
	assert.Equal(t, float64(created.ID), body["id"])

	_, err := env.repo.FindByID(context.Background(), created.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	w = env.do(t, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Spent entry not found", errorOf(t, w))
	assert.Equal(t, []string{events.SubjectCreated, events.SubjectDeleted}, env.events.subjects)
}

type filterBody struct {
	Data    []domain.SpentResponse `json:"data"`
	Count   int                    `json:"count"`
	Filters struct {
		Month      int      `json:"month"`
		Year       int      `json:"year"`
		Categories []string `json:"categories"`
	} `json:"filters"`
}

func TestFilter(t *testing.T) {
	env := newTestEnv(t, nil)
	a := env.create(t, `{"description":"a","category":"Food","amount":-1,"date":"2024-02-01"}`)
	b := env.create(t, `{"description":"b","category":"Rent","amount":-2,"date":"2024-02-02"}`)
	c := env.create(t, `{"description":"c","category":"Fun","amount":-3,"date":"2024-02-03"}`)
	env.create(t, `{"description":"d","category":"Food","amount":-4,"date":"2024-03-01"}`)

	w := env.do(t, http.MethodGet, "/api/spent/filter?month=2&year=2024", "")
	require.Equal(t, http.StatusOK, w.Code)
	all := decode[filterBody](t, w)
	require.Equal(t, 3, all.Count)
	assert.Equal(t, []uint{c.ID, b.ID, a.ID}, []uint{all.Data[0].ID, all.Data[1].ID, all.Data[2].ID})
	assert.Equal(t, 2, all.Filters.Month)
	assert.Nil(t, all.Filters.Categories)

	w = env.do(t, http.MethodGet, "/api/spent/filter?month=2&year=2024&categories=Food,%20Rent,", "")
	require.Equal(t, http.StatusOK, w.Code)
	csv := decode[filterBody](t, w)
	assert.Equal(t, 2, csv.Count)
	assert.Equal(t, []string{"Food", "Rent"}, csv.Filters.Categories)

	w = env.do(t, http.MethodGet, `/api/spent/filter?month=2&year=2024&categories=%5B%22Fun%22%5D`, "")
	require.Equal(t, http.StatusOK, w.Code)
	arr := decode[filterBody](t, w)
	require.Equal(t, 1, arr.Count)
	assert.Equal(t, "c", *arr.Data[0].Description)

	w = env.do(t, http.MethodGet, `/api/spent/filter?month=2&year=2024&categories=%5B%22Fun%22`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid categories format", errorOf(t, w))

	w = env.do(t, http.MethodGet, "/api/spent/filter?month=2abc&year=2024", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	prefixed := decode[filterBody](t, w)
	assert.Equal(t, 3, prefixed.Count)
	assert.Equal(t, 2, prefixed.Filters.Month)

	w = env.do(t, http.MethodGet, "/api/spent/filter?month=8&year=2030", "")
	require.Equal(t, http.StatusOK, w.Code)
	empty := decode[filterBody](t, w)
	assert.Zero(t, empty.Count)
	assert.NotNil(t, empty.Data)
}

func TestPeriodQueryErrors(t *testing.T) {
	env := newTestEnv(t, nil)
	cases := []struct {
		query string
		want  string
	}{
		{"", "Month and year parameters are required"},
		{"month=2", "Month and year parameters are required"},
		{"month=0&year=2024", "Month and year parameters are required"},
		{"month=13&year=2024", "Month must be between 1 and 12"},
		{"month=abc&year=2024", "Month must be between 1 and 12"},
		{"month=1&year=10000", "Year must be between 1900 and 9999"},
	}
	for _, endpoint := range []string{"filter", "breakdown_month", "balance"} {
		for _, tc := range cases {
			w := env.do(t, http.MethodGet, "/api/spent/"+endpoint+"?"+tc.query, "")
			assert.Equal(t, http.StatusBadRequest, w.Code, endpoint+"?"+tc.query)
			assert.Equal(t, tc.want, errorOf(t, w), endpoint+"?"+tc.query)
		}
	}

	w := env.do(t, http.MethodGet, "/api/spent/breakdown_year", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Year parameter is required", errorOf(t, w))
	w = env.do(t, http.MethodGet, "/api/spent/breakdown_year?year=1800", "")
	assert.Equal(t, "Year must be between 1900 and 9999", errorOf(t, w))
}

type copyBody struct {
	Message     string `json:"message"`
	CopiedCount int    `json:"copied_count"`
	Filters     struct {
		SourceMonth int     `json:"source_month"`
		TargetYear  int     `json:"target_year"`
		Category    *string `json:"category"`
	} `json:"filters"`
}

func TestCopyMonth(t *testing.T) {
	env := newTestEnv(t, nil)
	env.create(t, `{"description":"Rent","category":"Home","amount":-850,"date":"2024-01-31 18:45:12"}`)
	env.create(t, `{"description":"Gym","category":"Sport","amount":-30,"date":"2024-01-10 07:00:00"}`)

	w := env.do(t, http.MethodPost, "/api/spent/copy_month",
		`{"source_month":1,"source_year":2024,"target_month":2,"target_year":2024,"category":"Home"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode[copyBody](t, w)
	assert.Equal(t, "Entries copied successfully", body.Message)
	assert.Equal(t, 1, body.CopiedCount)
	assert.Equal(t, "Home", *body.Filters.Category)

	w = env.do(t, http.MethodGet, "/api/spent/filter?month=2&year=2024", "")
	feb := decode[filterBody](t, w)
	require.Equal(t, 1, feb.Count)
	assert.Equal(t, "2024-02-29 18:45:12", feb.Data[0].Date)
	assert.Equal(t, "-850.00", feb.Data[0].Amount)
	assert.Equal(t, 2, feb.Data[0].Month)

	w = env.do(t, http.MethodPost, "/api/spent/copy_month",
		`{"source_month":"6","source_year":"2024","target_month":"7","target_year":"2024"}`)
	require.Equal(t, http.StatusOK, w.Code)
	none := decode[copyBody](t, w)
	assert.Equal(t, "No entries found to copy", none.Message)
	assert.Zero(t, none.CopiedCount)
	assert.Nil(t, none.Filters.Category)
	assert.Equal(t, []string{events.SubjectCreated, events.SubjectCreated, events.SubjectCopied}, env.events.subjects)
}

func TestCopyMonthValidation(t *testing.T) {
	env := newTestEnv(t, nil)
	cases := []struct {
		body string
		want string
	}{
		{`[]`, "Invalid JSON data"},
		{`{"source_month":1,"source_year":2024,"target_month":2}`, "source_month, source_year, target_month, and target_year are required"},
		{`{"source_month":null,"source_year":2024,"target_month":2,"target_year":2024}`, "source_month, source_year, target_month, and target_year are required"},
		{`{"source_month":0,"source_year":2024,"target_month":2,"target_year":2024}`, "Months must be between 1 and 12"},
		{`{"source_month":1,"source_year":2024,"target_month":2,"target_year":99}`, "Years must be between 1900 and 9999"},
		{`{"source_month":1,"source_year":2024,"target_month":2,"target_year":2024,"category":{}}`, "Category must be a string"},
	}
	for _, tc := range cases {
		w := env.do(t, http.MethodPost, "/api/spent/copy_month", tc.body)
		assert.Equal(t, http.StatusBadRequest, w.Code, tc.body)
		assert.Equal(t, tc.want, errorOf(t, w), tc.body)
	}
}

func TestBreakdownAndBalance(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodGet, "/api/spent/breakdown_month?month=4&year=2024", "")
	require.Equal(t, http.StatusOK, w.Code)
	empty := decode[map[string]any](t, w)
	assert.Equal(t, "0.00", empty["total"])
	assert.Equal(t, "0.00", empty["expense_amount"])
	assert.Equal(t, "0.00", empty["income_amount"])
	assert.Equal(t, float64(0), empty["entry_count"])
	assert.Equal(t, float64(4), empty["month"])

	env.create(t, `{"amount":-12.50,"date":"2023-12-05"}`)
	env.create(t, `{"amount":1000,"date":"2024-01-01"}`)
	env.create(t, `{"amount":-200.25,"date":"2024-01-15"}`)
	env.create(t, `{"amount":"-0.10","date":"2024-02-03"}`)

	w = env.do(t, http.MethodGet, "/api/spent/breakdown_month?month=1&year=2024", "")
	jan := decode[map[string]any](t, w)
	assert.Equal(t, "799.75", jan["total"])
	assert.Equal(t, "-200.25", jan["expense_amount"])
	assert.Equal(t, "1000.00", jan["income_amount"])
	assert.Equal(t, float64(2), jan["entry_count"])

	w = env.do(t, http.MethodGet, "/api/spent/breakdown_year?year=2024", "")
	year := decode[map[string]any](t, w)
	assert.Equal(t, "799.65", year["total"])
	assert.Equal(t, float64(3), year["entry_count"])
	assert.NotContains(t, year, "month")

	w = env.do(t, http.MethodGet, "/api/spent/balance?month=1&year=2024", "")
	bal := decode[map[string]any](t, w)
	assert.Equal(t, "-12.50", bal["balance"])
	assert.Equal(t, float64(1), bal["entry_count"])

	w = env.do(t, http.MethodGet, "/api/spent/balance?month=3&year=2024", "")
	bal = decode[map[string]any](t, w)
	assert.Equal(t, "787.15", bal["balance"])
	assert.Equal(t, float64(4), bal["entry_count"])
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
}

func TestAmountsRoundedBeforeStorage(t *testing.T) {
	env := newTestEnv(t, nil)
	for i := 0; i < 3; i++ {
		got := env.create(t, `{"amount":"12.345","date":"2024-02-10"}`)
		assert.Equal(t, "12.35", got.Amount)
	}

	w := env.do(t, http.MethodGet, "/api/spent/filter?month=2&year=2024", "")
	listed := decode[filterBody](t, w)
	require.Equal(t, 3, listed.Count)
	for _, r := range listed.Data {
		assert.Equal(t, "12.35", r.Amount)
	}

	w = env.do(t, http.MethodGet, "/api/spent/breakdown_month?month=2&year=2024", "")
	totals := decode[map[string]any](t, w)
	assert.Equal(t, "37.05", totals["total"])
	assert.Equal(t, "37.05", totals["income_amount"])

	w = env.do(t, http.MethodGet, "/api/spent/balance?month=3&year=2024", "")
	assert.Equal(t, "37.05", decode[map[string]any](t, w)["balance"])
}

func TestListings(t *testing.T) {
	env := newTestEnv(t, nil)
	for _, body := range []string{
		`{"description":"Bread","category":"Food","amount":-1,"date":"2024-01-01"}`,
		`{"description":"Bus","category":"Transport","amount":-2,"date":"2024-01-02"}`,
		`{"amount":-3,"date":"2024-01-03"}`,
		`{"description":"Apples","category":"Food","amount":-4,"date":"2024-01-04"}`,
	} {
		env.create(t, body)
	}

	w := env.do(t, http.MethodGet, "/api/spent/last_categories", "")
	require.Equal(t, http.StatusOK, w.Code)
	last := decode[map[string]any](t, w)
	assert.Equal(t, []any{"Food", "Transport"}, last["categories"])
	assert.Equal(t, float64(2), last["count"])
	assert.Equal(t, float64(5), last["limit"])

	w = env.do(t, http.MethodGet, "/api/spent/last_descriptions?limit=2", "")
	descs := decode[map[string]any](t, w)
	assert.Equal(t, []any{"Apples", "Bus"}, descs["descriptions"])

	w = env.do(t, http.MethodGet, "/api/spent/all_descriptions", "")
	all := decode[map[string]any](t, w)
	assert.Equal(t, []any{"Apples", "Bread", "Bus"}, all["descriptions"])
	assert.Equal(t, float64(3), all["count"])

	w = env.do(t, http.MethodGet, "/api/spent/all_categories", "")
	cats := decode[map[string]any](t, w)
	assert.Equal(t, []any{"Food", "Transport"}, cats["categories"])

	for query, want := range map[string]float64{"0": 1, "-4": 1, "abc": 1, "500": 100, "7": 7} {
		w = env.do(t, http.MethodGet, "/api/spent/last_categories?limit="+query, "")
		assert.Equal(t, want, decode[map[string]any](t, w)["limit"], query)
	}
}

func TestCachedViewsAreInvalidatedOnWrite(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	env := newTestEnv(t, utils.NewCache(rdb, time.Minute))

	env.create(t, `{"category":"Food","amount":-1,"date":"2024-01-01"}`)

	w := env.do(t, http.MethodGet, "/api/spent/all_categories", "")
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
	w = env.do(t, http.MethodGet, "/api/spent/all_categories", "")
	assert.Equal(t, "HIT", w.Header().Get("X-Cache"))
	assert.Equal(t, []any{"Food"}, decode[map[string]any](t, w)["categories"])

	w = env.do(t, http.MethodGet, "/api/spent/breakdown_month?month=1&year=2024", "")
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
	w = env.do(t, http.MethodGet, "/api/spent/breakdown_month?month=1&year=2024", "")
	assert.Equal(t, "HIT", w.Header().Get("X-Cache"))
	assert.Equal(t, "-1.00", decode[map[string]any](t, w)["total"])
	assert.True(t, mr.Exists(utils.Key("v1", "breakdown", "month", 2024, 1)))

	env.create(t, `{"category":"Rent","amount":-2,"date":"2024-01-02"}`)
	assert.False(t, mr.Exists(utils.Key("v1", "breakdown", "month", 2024, 1)))

	w = env.do(t, http.MethodGet, "/api/spent/all_categories", "")
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
	assert.Equal(t, []any{"Food", "Rent"}, decode[map[string]any](t, w)["categories"])

	w = env.do(t, http.MethodGet, "/api/spent/breakdown_month?month=1&year=2024", "")
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
	assert.Equal(t, "-3.00", decode[map[string]any](t, w)["total"])
	assert.True(t, mr.Exists(utils.Key("v2", "breakdown", "month", 2024, 1)))
}

// failingStore fails every query it is asked to run
type failingStore struct {
	SpentStore
}

var errBoom = errors.New("connection refused")

func (failingStore) FindByID(context.Context, uint) (*domain.Spent, error) { return nil, errBoom }
func (failingStore) Create(context.Context, *domain.Spent) error { return errBoom }
func (failingStore) Filter(context.Context, int, int, []string) ([]domain.Spent, error) {
	return nil, errBoom
}
func (failingStore) CopyMonth(context.Context, repository.CopyParams) (int, error) { return 0, errBoom }
func (failingStore) LastDistinct(context.Context, string, int) ([]string, error) { return nil, errBoom }
func (failingStore) AllDistinct(context.Context, string) ([]string, error) { return nil, errBoom }
func (failingStore) MonthTotals(context.Context, int, int) (repository.Totals, error) {
	return repository.Totals{}, errBoom
}
func (failingStore) YearTotals(context.Context, int) (repository.Totals, error) {
	return repository.Totals{}, errBoom
}
func (failingStore) TotalsBefore(context.Context, int, int) (repository.Totals, error) {
	return repository.Totals{}, errBoom
}

func TestServerErrorsHideCause(t *testing.T) {
	env := &testEnv{engine: newEngine(failingStore{}, nil, events.Nop{})}
	cases := []struct {
		method, path, body, want string
	}{
		{http.MethodPost, "/api/spent/create", `{"amount":1}`, "Failed to create spent entry"},
		{http.MethodPut, "/api/spent/edit/1", `{"amount":1}`, "Failed to update spent entry"},
		{http.MethodDelete, "/api/spent/delete/1", "", "Failed to delete spent entry"},
		{http.MethodGet, "/api/spent/filter?month=1&year=2024", "", "Failed to fetch spent entries"},
		{http.MethodPost, "/api/spent/copy_month", `{"source_month":1,"source_year":2024,"target_month":2,"target_year":2024}`, "Failed to copy entries"},
		{http.MethodGet, "/api/spent/last_categories", "", "Failed to fetch categories"},
		{http.MethodGet, "/api/spent/all_categories", "", "Failed to fetch all categories"},
		{http.MethodGet, "/api/spent/last_descriptions", "", "Failed to fetch descriptions"},
		{http.MethodGet, "/api/spent/all_descriptions", "", "Failed to fetch all descriptions"},
		{http.MethodGet, "/api/spent/breakdown_month?month=1&year=2024", "", "Failed to compute breakdown"},
		{http.MethodGet, "/api/spent/breakdown_year?year=2024", "", "Failed to compute breakdown"},
		{http.MethodGet, "/api/spent/balance?month=1&year=2024", "", "Failed to compute balance"},
	}
	for _, tc := range cases {
		w := env.do(t, tc.method, tc.path, tc.body)
		assert.Equal(t, http.StatusInternalServerError, w.Code, tc.path)
		assert.Equal(t, tc.want, errorOf(t, w), tc.path)
		assert.NotContains(t, w.Body.String(), "connection refused")
	}
}

type pingerFunc func(context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthHandler(t *testing.T) {
	ok := pingerFunc(func(context.Context) error { return nil })
	down := pingerFunc(func(context.Context) error { return errBoom })

	r := gin.New()
	r.GET("/up", HealthHandler(ok, nil))
	r.GET("/down", HealthHandler(ok, down))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/up", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/down", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"unavailable"}`, w.Body.String())
}

func jsonID(id uint) string {
	b, _ := json.Marshal(id)
	return string(b)
}
