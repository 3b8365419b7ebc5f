package api

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/CjlConsultoria/convivium2/internal/gateway"
)

type call struct {
	method, path string
	body         any
	skip         bool
}

type fakeDoer struct {
	calls []call
	reply string
}

func (f *fakeDoer) Do(_ context.Context, method, path string, body, out any, opts ...gateway.CallOption) error {
	f.calls = append(f.calls, call{method: method, path: path, body: body, skip: len(opts) > 0})
	if out != nil && f.reply != "" {
		return json.Unmarshal([]byte(f.reply), out)
	}
	return nil
}

func TestPaths(t *testing.T) {
	f := &fakeDoer{}
	c := New(f)
	ctx := context.Background()

	_, _ = c.Complaints.List(ctx, 5, PageRequest{Page: 1, Size: 20, Status: "OPEN"})
	_, _ = c.Parcels.Mine(ctx, 5, PageRequest{})
	_ = c.Users.Reject(ctx, 5, 9)
	_ = c.Notifications.MarkAllAsRead(ctx)
	_, _ = c.Condominiums.Summary(ctx, 7)
	_, _ = c.Dashboard.Activity(ctx, 7, PageRequest{})
	_, _ = c.Payments.Invoices(ctx, 7)

	want := []string{
		"GET /condos/5/complaints?page=1&size=20&status=OPEN",
		"GET /condos/5/parcels/mine?page=0",
		"POST /condos/5/users/9/reject",
		"PATCH /notifications/read-all",
		"GET /condos/7",
		"GET /condos/7/dashboard/activity?page=0&size=10",
		"GET /condos/7/payment/invoices",
	}
	if len(f.calls) != len(want) {
		t.Fatalf("got %d calls", len(f.calls))
	}
	for i, w := range want {
		if got := f.calls[i].method + " " + f.calls[i].path; got != w {
			t.Fatalf("call %d = %q, want %q", i, got, w)
		}
	}
}

func TestLoginSkipsRenewal(t *testing.T) {
	f := &fakeDoer{reply: `{"accessToken":"a","refreshToken":"r","expiresIn":60,"user":{"id":3,"condominiumRoles":[{"condominiumId":5,"role":"PORTEIRO","status":"ACTIVE"}]}}`}
	c := New(f)
	res, err := c.Auth.Login(context.Background(), "ana@example.com", "secret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if !f.calls[0].skip {
		t.Fatal("login must not trigger token renewal")
	}
	if res.User.ID != 3 || len(res.User.CondominiumRoles) != 1 {
		t.Fatalf("unexpected user %+v", res.User)
	}
}

type recordingDoer struct {
	contentType string
	payload     string
}

func (r *recordingDoer) Do(_ context.Context, _, _ string, body, _ any, _ ...gateway.CallOption) error {
	raw := body.(gateway.RawBody)
	r.contentType = raw.ContentType
	r.payload = string(raw.Data)
	return nil
}

func TestUploadPhotoMultipart(t *testing.T) {
	r := &recordingDoer{}
	c := New(r)
	if err := c.Parcels.UploadPhoto(context.Background(), 1, 2, "box.jpg", strings.NewReader("jpegdata"), "ARRIVAL"); err != nil {
		t.Fatalf("UploadPhoto: %v", err)
	}
	if !strings.HasPrefix(r.contentType, "multipart/form-data; boundary=") {
		t.Fatalf("content type %q", r.contentType)
	}
	for _, want := range []string{`name="file"; filename="box.jpg"`, "jpegdata", `name="photoType"`, "ARRIVAL"} {
		if !strings.Contains(r.payload, want) {
			t.Fatalf("payload missing %q", want)
		}
	}
}

func TestPagination(t *testing.T) {
	p := NewPagination(0)
	if p.Size != 20 || p.HasPrev() || p.HasNext() {
		t.Fatalf("unexpected initial state %+v", p)
	}
	Update(p, Page[int]{Page: 0, Size: 10, TotalElements: 25, TotalPages: 3})
	p.Next()
	p.Next()
	p.Next()
	if p.Page != 2 {
		t.Fatalf("page = %d, want 2", p.Page)
	}
	p.GoTo(7)
	if p.Page != 2 {
		t.Fatal("GoTo accepted out-of-range page")
	}
	p.Prev()
	if got := p.Request(); got.Page != 1 || got.Size != 10 {
		t.Fatalf("request = %+v", got)
	}
}
