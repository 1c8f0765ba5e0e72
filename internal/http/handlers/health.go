package handlers

import "net/http"

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	if a.DB != nil {
		if err := a.DB.Ping(r.Context()); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
	}
	a.json(w, code, map[string]string{"status": status})
}
