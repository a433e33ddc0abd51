package v1alpha1

import "net/http"

// UploadReply acknowledges an accepted upload. Processing continues in
// the background; the status URL is where to poll.
type UploadReply struct {
	JobID     string `json:"job_id"`
	Message   string `json:"message"`
	StatusURL string `json:"status_url"`
}

// StatusReply is the progress view of one import job. Unknown job ids
// are answered with the queued-or-unknown default, never an error.
type StatusReply struct {
	Percent float64 `json:"progress"`
	Message string  `json:"message"`
}

// ImportResultReply answers the synchronous import path.
type ImportResultReply struct {
	Status       string `json:"status"`
	RowsImported int64  `json:"rows_imported"`
}

type Product struct {
	ID          uint     `json:"id"`
	Sku         string   `json:"sku"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       *float64 `json:"price"`
	Active      bool     `json:"active"`
}

type ProductList []Product

type Webhook struct {
	ID        uint   `json:"id"`
	Url       string `json:"url"`
	Event     string `json:"event"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"created_at"`
}

type WebhookList []Webhook

type WebhookCreate struct {
	Url    string `json:"url" validate:"required,url"`
	Event  string `json:"event" validate:"required"`
	Active *bool  `json:"active"`
}

// WebhookTestReply reports the upstream response of a test delivery.
type WebhookTestReply struct {
	StatusCode int `json:"status_code"`
}

type Error struct {
	Message string `json:"message"`
}

func (UploadReply) Render(w http.ResponseWriter, r *http.Request) error       { return nil }
func (StatusReply) Render(w http.ResponseWriter, r *http.Request) error       { return nil }
func (ImportResultReply) Render(w http.ResponseWriter, r *http.Request) error { return nil }
func (Product) Render(w http.ResponseWriter, r *http.Request) error           { return nil }
func (Webhook) Render(w http.ResponseWriter, r *http.Request) error           { return nil }
func (WebhookTestReply) Render(w http.ResponseWriter, r *http.Request) error  { return nil }
func (Error) Render(w http.ResponseWriter, r *http.Request) error             { return nil }
