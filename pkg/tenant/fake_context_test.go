package tenant

import (
	"context"
	"time"

	"github.com/echterhof/rockstar-web-framework/pkg"
)

// fakeContext is a minimal pkg.Context implementation for tenant package
// tests, in the same spirit as the teacher's own mockMiddlewareContext, with
// a working Set/Get/SetHeader/JSON so kernel and route handler tests can
// assert on what the middleware actually attached or returned.
type fakeContext struct {
	req *pkg.Request

	store   map[string]interface{}
	headers map[string]string
	params  map[string]string
	body    []byte

	jsonStatus int
	jsonBody   interface{}
}

func newFakeContext(req *pkg.Request) *fakeContext {
	return &fakeContext{
		req:     req,
		store:   make(map[string]interface{}),
		headers: make(map[string]string),
		params:  make(map[string]string),
	}
}

func (f *fakeContext) Request() *pkg.Request                 { return f.req }
func (f *fakeContext) Response() pkg.ResponseWriter           { return nil }
func (f *fakeContext) Params() map[string]string              { return f.params }
func (f *fakeContext) Param(name string) string                { return f.params[name] }
func (f *fakeContext) Query() map[string]string                { return nil }
func (f *fakeContext) Headers() map[string]string              { return nil }
func (f *fakeContext) Body() []byte                             { return f.body }
func (f *fakeContext) Session() pkg.SessionManager              { return nil }
func (f *fakeContext) User() *pkg.User                          { return nil }
func (f *fakeContext) Tenant() *pkg.Tenant                      { return nil }
func (f *fakeContext) DB() pkg.DatabaseManager                  { return nil }
func (f *fakeContext) Cache() pkg.CacheManager                  { return nil }
func (f *fakeContext) Config() pkg.ConfigManager                { return nil }
func (f *fakeContext) I18n() pkg.I18nManager                    { return nil }
func (f *fakeContext) Files() pkg.FileManager                   { return nil }
func (f *fakeContext) Logger() pkg.Logger                       { return nil }
func (f *fakeContext) Metrics() pkg.MetricsCollector             { return nil }
func (f *fakeContext) Context() context.Context                 { return context.Background() }
func (f *fakeContext) WithTimeout(d time.Duration) pkg.Context   { return f }
func (f *fakeContext) WithCancel() (pkg.Context, context.CancelFunc) {
	return f, func() {}
}
func (f *fakeContext) JSON(statusCode int, data interface{}) error {
	f.jsonStatus = statusCode
	f.jsonBody = data
	return nil
}
func (f *fakeContext) XML(statusCode int, data interface{}) error { return nil }
func (f *fakeContext) HTML(statusCode int, template string, data interface{}) error {
	return nil
}
func (f *fakeContext) String(statusCode int, message string) error { return nil }
func (f *fakeContext) Redirect(statusCode int, url string) error   { return nil }
func (f *fakeContext) SetCookie(cookie *pkg.Cookie) error          { return nil }
func (f *fakeContext) GetCookie(name string) (*pkg.Cookie, error)  { return nil, nil }
func (f *fakeContext) SetHeader(key, value string)                 { f.headers[key] = value }
func (f *fakeContext) GetHeader(key string) string                  { return f.headers[key] }
func (f *fakeContext) FormValue(key string) string                  { return "" }
func (f *fakeContext) FormFile(key string) (*pkg.FormFile, error)   { return nil, nil }
func (f *fakeContext) IsAuthenticated() bool                        { return false }
func (f *fakeContext) IsAuthorized(resource, action string) bool    { return false }
func (f *fakeContext) Set(key string, value interface{})            { f.store[key] = value }
func (f *fakeContext) Get(key string) (interface{}, bool) {
	v, ok := f.store[key]
	return v, ok
}
