package signup

import (
	"net/http"

	"github.com/go-chi/render"
)

// Response is the handler return value, rendered by the route wrappers
type Response struct {
	body interface{}
	Code int
}

// Render writes the response body with its status code
func (resp *Response) Render(w http.ResponseWriter, r *http.Request) {
	render.Status(r, resp.Code)
	render.JSON(w, r, resp.body)
}

// JSONResponse builds a JSON response with the given status code
func JSONResponse(code int, body interface{}) *Response {
	return &Response{body: body, Code: code}
}

// MessageResponse is the generic success/message body shape
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
