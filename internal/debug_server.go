package internal

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
)

//go:embed inspect.html
var templatesFS embed.FS

// RoomRow is one line of the inspector's rooms table.
type RoomRow struct {
	Name    string
	Size    int
	Members string
}

type RoomsProvider func() []RoomRow
type StatsProvider func() map[string]any

type PageData struct {
	Rooms []RoomRow
	Stats map[string]any
}

// StartDebugServer exposes a read-only HTML view of the live rooms and the
// relay stats. It listens on its own port, separate from client traffic.
func StartDebugServer(port int, endpoint string, rooms RoomsProvider, stats StatsProvider) {
	mux := http.NewServeMux()
	tmpl := template.Must(template.ParseFS(templatesFS, "inspect.html"))

	mux.HandleFunc(endpoint, func(w http.ResponseWriter, r *http.Request) {
		data := PageData{Stats: make(map[string]any)}
		if rooms != nil {
			data.Rooms = rooms()
		}
		if stats != nil {
			data.Stats = stats()
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = tmpl.Execute(w, data)
	})

	go func() {
		// Listens on all interfaces to allow network access
		_ = http.ListenAndServe(fmt.Sprintf("0.0.0.0:%d", port), mux)
	}()
}
