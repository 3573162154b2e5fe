package tests

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"

	"tunesmith/studio/schema"
	"tunesmith/studio/store"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type httpError struct {
	code    int
	message string
}

func (e *httpError) Error() string {
	return fmt.Sprintf("status %d: %v", e.code, e.message)
}

func isStatus(err error, code int) bool {
	var herr *httpError
	return errors.As(err, &herr) && herr.code == code
}

type httpTestRequest struct {
	api http.Handler

	method   string
	endpoint string
	headers  map[string]string
	json     interface{}
	body     io.Reader
	login    *loginInfo
}

func newHttpTestRequest(api http.Handler, method, endpoint string) *httpTestRequest {
	return &httpTestRequest{
		api:      api,
		method:   method,
		endpoint: endpoint,
		headers:  nil,
		json:     nil,
		body:     nil,
	}
}

func (r *httpTestRequest) Header(key, value string) *httpTestRequest {
	if r.headers == nil {
		r.headers = make(map[string]string)
	}
	r.headers[key] = value
	return r
}

func (r *httpTestRequest) Login(email, password string) *httpTestRequest {
	r.login = &loginInfo{Email: email, Password: password}
	return r
}

func (r *httpTestRequest) Auth(token string) *httpTestRequest {
	return r.Header("Authorization", fmt.Sprintf("Bearer %v", token))
}

func (r *httpTestRequest) Json(data interface{}) *httpTestRequest {
	r.json = data
	return r
}

// response body will be parsed into result, passing nil indicates that no result is returned.
func (r *httpTestRequest) Do(result interface{}) error {
	if r.json != nil {
		body := new(bytes.Buffer)
		err := json.NewEncoder(body).Encode(r.json)
		if err != nil {
			return fmt.Errorf("error encoding json body for endpoint %v: %w", r.endpoint, err)
		}
		r.body = body
	}

	req := httptest.NewRequest(r.method, r.endpoint, r.body)
	if r.headers != nil {
		for k, v := range r.headers {
			req.Header.Add(k, v)
		}
	}

	if r.login != nil {
		req.SetBasicAuth(r.login.Email, r.login.Password)
	}

	w := httptest.NewRecorder()

	r.api.ServeHTTP(w, req)

	res := w.Result()
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return &httpError{code: res.StatusCode, message: w.Body.String()}
	}

	if result != nil {
		err := json.NewDecoder(res.Body).Decode(result)
		if err != nil {
			return fmt.Errorf("error parsing %v response from endpoint %v: %w", r.method, r.endpoint, err)
		}
	}

	return nil
}

type client struct {
	api       chi.Router
	authToken string
	userId    string
}

func (c *client) request(method, endpoint string) *httpTestRequest {
	r := newHttpTestRequest(c.api, method, endpoint)
	if c.authToken != "" {
		return r.Auth(c.authToken)
	}
	return r
}

func (c *client) Get(endpoint string) *httpTestRequest {
	return c.request("GET", endpoint)
}

func (c *client) Post(endpoint string) *httpTestRequest {
	return c.request("POST", endpoint)
}

func (c *client) Patch(endpoint string) *httpTestRequest {
	return c.request("PATCH", endpoint)
}

func (c *client) Delete(endpoint string) *httpTestRequest {
	return c.request("DELETE", endpoint)
}

type loginInfo struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *client) signup(email, password string) (loginInfo, error) {
	body := map[string]string{"email": email, "password": password}

	err := c.Post("/auth/signup").Json(body).Do(nil)
	if err != nil {
		return loginInfo{}, err
	}

	return loginInfo{Email: email, Password: password}, nil
}

func (c *client) login(login loginInfo) error {
	var res map[string]string
	err := c.Get("/auth/login").Login(login.Email, login.Password).Do(&res)
	if err != nil {
		return err
	}

	c.authToken = res["accessToken"]
	c.userId = res["userId"]

	return nil
}

func (c *client) userInfo() (schema.User, error) {
	var res schema.User
	err := c.Get("/auth/user").Do(&res)
	return res, err
}

func (c *client) userStats() (schema.UserStats, error) {
	var res schema.UserStats
	err := c.Get("/user/stats").Do(&res)
	return res, err
}

func (c *client) dashboardStats() (store.DashboardStats, error) {
	var res store.DashboardStats
	err := c.Get("/dashboard/stats").Do(&res)
	return res, err
}

func (c *client) createProject(body map[string]interface{}) (schema.Project, error) {
	var res schema.Project
	err := c.Post("/projects").Json(body).Do(&res)
	return res, err
}

func (c *client) listProjects() ([]schema.Project, error) {
	var res []schema.Project
	err := c.Get("/projects").Do(&res)
	return res, err
}

func (c *client) getProject(projectId uuid.UUID) (schema.Project, error) {
	var res schema.Project
	err := c.Get(fmt.Sprintf("/projects/%v", projectId)).Do(&res)
	return res, err
}

func (c *client) updateProject(projectId uuid.UUID, patch map[string]interface{}) (schema.Project, error) {
	var res schema.Project
	err := c.Patch(fmt.Sprintf("/projects/%v", projectId)).Json(patch).Do(&res)
	return res, err
}

func (c *client) deleteProject(projectId uuid.UUID) error {
	return c.Delete(fmt.Sprintf("/projects/%v", projectId)).Do(nil)
}

func (c *client) listArtists() ([]schema.AiArtist, error) {
	var res []schema.AiArtist
	err := c.Get("/ai-artists").Do(&res)
	return res, err
}

func (c *client) addCollaborator(projectId uuid.UUID, body map[string]interface{}) (schema.Collaborator, error) {
	var res schema.Collaborator
	err := c.Post(fmt.Sprintf("/projects/%v/collaborators", projectId)).Json(body).Do(&res)
	return res, err
}

func (c *client) listCollaborators(projectId uuid.UUID) ([]schema.Collaborator, error) {
	var res []schema.Collaborator
	err := c.Get(fmt.Sprintf("/projects/%v/collaborators", projectId)).Do(&res)
	return res, err
}

func (c *client) removeCollaborator(collaboratorId uuid.UUID) error {
	return c.Delete(fmt.Sprintf("/collaborators/%v", collaboratorId)).Do(nil)
}

func (c *client) recordAnalytics(body map[string]interface{}) (schema.AnalyticsEvent, error) {
	var res schema.AnalyticsEvent
	err := c.Post("/analytics").Json(body).Do(&res)
	return res, err
}

func (c *client) listAnalytics(limit int) ([]schema.AnalyticsEvent, error) {
	endpoint := "/analytics"
	if limit > 0 {
		endpoint = fmt.Sprintf("/analytics?limit=%d", limit)
	}
	var res []schema.AnalyticsEvent
	err := c.Get(endpoint).Do(&res)
	return res, err
}

func (c *client) recordSecurityLog(body map[string]interface{}) (schema.SecurityLog, error) {
	var res schema.SecurityLog
	err := c.Post("/security/logs").Json(body).Do(&res)
	return res, err
}

func (c *client) listSecurityLogs(limit int) ([]schema.SecurityLog, error) {
	endpoint := "/security/logs"
	if limit > 0 {
		endpoint = fmt.Sprintf("/security/logs?limit=%d", limit)
	}
	var res []schema.SecurityLog
	err := c.Get(endpoint).Do(&res)
	return res, err
}
