package pages

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/harperreed/crmtui/api"
	"github.com/harperreed/crmtui/models"
)

// fakeCRM is an in-memory backend speaking the REST shapes the controllers use.
type fakeCRM struct {
	mu       sync.Mutex
	nextID   int
	leads    []models.Person
	contacts []models.Person
	groups   []models.Group
	users    []models.User
	deals    []models.Deal
	tasks    []models.Task
	meetings []models.Meeting
	calls    map[string]int
	fail     map[string]int // "METHOD /path" -> status to answer with

	lastUpload map[string]string
}

func newFakeCRM() *fakeCRM {
	return &fakeCRM{
		calls: make(map[string]int),
		fail:  make(map[string]int),
		users: []models.User{{ID: "u1", Name: "Uma"}, {ID: "u2", Name: "Vic"}},
	}
}

func (f *fakeCRM) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s%d", prefix, f.nextID)
}

func (f *fakeCRM) count(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[key]
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeCRM) people(kind string) *[]models.Person {
	if kind == "contacts" {
		return &f.contacts
	}
	return &f.leads
}

func (f *fakeCRM) handler() http.Handler {
	mux := http.NewServeMux()

	for _, kind := range []string{"leads", "contacts"} {
		kind := kind
		base := "/api/" + kind
		mux.HandleFunc("GET "+base, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, *f.people(kind))
		})
		mux.HandleFunc("POST "+base, func(w http.ResponseWriter, r *http.Request) {
			var p models.Person
			_ = json.NewDecoder(r.Body).Decode(&p)
			p.ID = f.id(kind[:1])
			*f.people(kind) = append(*f.people(kind), p)
			writeJSON(w, p)
		})
		mux.HandleFunc("PUT "+base+"/{id}", func(w http.ResponseWriter, r *http.Request) {
			list := f.people(kind)
			for i := range *list {
				if (*list)[i].ID == r.PathValue("id") {
					_ = json.NewDecoder(r.Body).Decode(&(*list)[i])
					writeJSON(w, (*list)[i])
					return
				}
			}
			http.Error(w, `{"message":"not found"}`, http.StatusNotFound)
		})
		mux.HandleFunc("DELETE "+base+"/delete-all", func(w http.ResponseWriter, r *http.Request) {
			*f.people(kind) = nil
			writeJSON(w, map[string]string{"message": "deleted"})
		})
		mux.HandleFunc("DELETE "+base+"/{id}", func(w http.ResponseWriter, r *http.Request) {
			list := f.people(kind)
			kept := (*list)[:0]
			for _, p := range *list {
				if p.ID != r.PathValue("id") {
					kept = append(kept, p)
				}
			}
			*list = kept
			writeJSON(w, map[string]string{"message": "deleted"})
		})
		mux.HandleFunc("POST "+base+"/upload-csv", func(w http.ResponseWriter, r *http.Request) {
			if err := r.ParseMultipartForm(1 << 20); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			file, hdr, err := r.FormFile("file")
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			data, _ := io.ReadAll(file)
			f.lastUpload = map[string]string{
				"filename":    hdr.Filename,
				"content":     string(data),
				"createGroup": r.FormValue("createGroup"),
			}
			imported := []models.Person{{ID: f.id("i"), Name: "Imported", Email: "i@x.test", Status: models.StatusNew}}
			*f.people(kind) = append(*f.people(kind), imported...)
			// contacts answer with a count only, like the real endpoint
			resp := map[string]any{kind: imported}
			if kind == "contacts" {
				resp = map[string]any{"message": "CSV uploaded", "added": len(imported)}
			}
			if r.FormValue("createGroup") == "true" {
				g := models.Group{ID: f.id("g"), Name: "Import", Members: []models.GroupMember{{MemberID: imported[0].ID, Type: models.EntityType(kind[:len(kind)-1])}}}
				f.groups = append(f.groups, g)
				resp["group"] = g
			}
			writeJSON(w, resp)
		})
	}

	mux.HandleFunc("GET /api/users", func(w http.ResponseWriter, r *http.Request) { writeJSON(w, f.users) })
	mux.HandleFunc("GET /api/groups", func(w http.ResponseWriter, r *http.Request) { writeJSON(w, f.groups) })
	mux.HandleFunc("POST /api/groups/create", func(w http.ResponseWriter, r *http.Request) {
		var body struct{ Name string }
		_ = json.NewDecoder(r.Body).Decode(&body)
		g := models.Group{ID: f.id("g"), Name: body.Name, Members: []models.GroupMember{}}
		f.groups = append(f.groups, g)
		writeJSON(w, map[string]any{"group": g})
	})
	mux.HandleFunc("POST /api/groups/{id}/add-members", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			MemberIDs []string          `json:"memberIds"`
			Type      models.EntityType `json:"type"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		var added []map[string]string
		for i := range f.groups {
			if f.groups[i].ID == r.PathValue("id") {
				for _, id := range body.MemberIDs {
					f.groups[i].Members = append(f.groups[i].Members, models.GroupMember{MemberID: id, Type: body.Type})
					added = append(added, map[string]string{"memberId": id})
				}
			}
		}
		writeJSON(w, map[string]any{"addedMembers": added})
	})
	mux.HandleFunc("POST /api/groups/{id}/remove-member", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"message": "removed"})
	})
	mux.HandleFunc("DELETE /api/groups/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"message": "deleted"})
	})

	mux.HandleFunc("GET /api/deals", func(w http.ResponseWriter, r *http.Request) { writeJSON(w, f.deals) })
	mux.HandleFunc("POST /api/deals", func(w http.ResponseWriter, r *http.Request) {
		var d models.Deal
		_ = json.NewDecoder(r.Body).Decode(&d)
		d.ID = f.id("d")
		f.deals = append(f.deals, d)
		writeJSON(w, d)
	})
	mux.HandleFunc("PUT /api/deals/{id}", func(w http.ResponseWriter, r *http.Request) {
		for i := range f.deals {
			if f.deals[i].ID == r.PathValue("id") {
				_ = json.NewDecoder(r.Body).Decode(&f.deals[i])
				writeJSON(w, f.deals[i])
				return
			}
		}
		http.Error(w, `{"message":"not found"}`, http.StatusNotFound)
	})

	mux.HandleFunc("GET /api/tasks", func(w http.ResponseWriter, r *http.Request) { writeJSON(w, f.tasks) })
	mux.HandleFunc("POST /api/tasks", func(w http.ResponseWriter, r *http.Request) {
		var t models.Task
		_ = json.NewDecoder(r.Body).Decode(&t)
		t.ID = f.id("t")
		f.tasks = append(f.tasks, t)
		writeJSON(w, t)
	})
	mux.HandleFunc("PUT /api/tasks/{id}", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]json.RawMessage
		_ = json.NewDecoder(r.Body).Decode(&body)
		for i := range f.tasks {
			if f.tasks[i].ID == r.PathValue("id") {
				if raw, ok := body["status"]; ok {
					_ = json.Unmarshal(raw, &f.tasks[i].Status)
				}
				writeJSON(w, f.tasks[i])
				return
			}
		}
		http.Error(w, `{"message":"not found"}`, http.StatusNotFound)
	})

	mux.HandleFunc("GET /api/meetings", func(w http.ResponseWriter, r *http.Request) { writeJSON(w, f.meetings) })
	mux.HandleFunc("POST /api/meetings", func(w http.ResponseWriter, r *http.Request) {
		var m models.Meeting
		_ = json.NewDecoder(r.Body).Decode(&m)
		m.ID = f.id("m")
		f.meetings = append(f.meetings, m)
		writeJSON(w, m)
	})

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		key := r.Method + " " + r.URL.Path
		f.calls[key]++
		if code, ok := f.fail[key]; ok {
			w.WriteHeader(code)
			_, _ = w.Write([]byte(`{"message":"backend said no"}`))
			return
		}
		mux.ServeHTTP(w, r)
	})
}

// newTestOptions starts the fake backend and returns controller options wired to it.
func newTestOptions(t *testing.T, crm *fakeCRM) (Options, *api.RecordingNotifier) {
	t.Helper()
	server := httptest.NewServer(crm.handler())
	t.Cleanup(server.Close)
	rec := &api.RecordingNotifier{}
	client := api.NewClient(api.WithBaseURL(server.URL), api.WithNotifier(rec))
	return Options{Gateway: client}, rec
}

func kinds(notices []api.Notice) []api.NoticeKind {
	out := make([]api.NoticeKind, len(notices))
	for i, n := range notices {
		out[i] = n.Kind
	}
	return out
}
