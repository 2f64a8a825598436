package triage

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"dot-triage/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the triage service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches the triage route.
func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.POST("/triage", h.triage)
}

type triageRequest struct {
	EmailContent string `json:"emailContent"`
}

// Response is the success payload of POST /triage.
type Response struct {
	JobNumber     string         `json:"jobNumber"`
	JobName       string         `json:"jobName"`
	ClientCode    string         `json:"clientCode"`
	ClientName    string         `json:"clientName"`
	ProjectOwner  string         `json:"projectOwner"`
	TeamID        *string        `json:"teamId"`
	SharepointURL *string        `json:"sharepointUrl"`
	EmailBody     string         `json:"emailBody"`
	TeamsPost     string         `json:"teamsPost,omitempty"`
	FullAnalysis  map[string]any `json:"fullAnalysis"`
}

func (h *Handler) triage(c *gin.Context) {
	var req triageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, respond.ErrorBody{
			Error: "No email content provided",
		})
		return
	}

	result, err := h.Svc.Process(c.Request.Context(), req.EmailContent)
	if err != nil {
		var modelErr *ModelOutputError
		switch {
		case errors.Is(err, ErrEmptyContent):
			respond.Error(c, http.StatusBadRequest, respond.ErrorBody{
				Error: "No email content provided",
			})
		case errors.As(err, &modelErr):
			respond.Error(c, http.StatusInternalServerError, respond.ErrorBody{
				Error:       "Claude returned invalid JSON",
				Details:     modelErr.Err.Error(),
				RawResponse: modelErr.Raw,
			})
		default:
			respond.Error(c, http.StatusInternalServerError, respond.ErrorBody{
				Error:   "Internal server error",
				Details: err.Error(),
			})
		}
		return
	}

	// For the request log line.
	c.Set("clientCode", result.Analysis.Code())
	c.Set("jobNumber", result.Reservation.JobNumber)

	respond.OK(c, Response{
		JobNumber:     result.Reservation.JobNumber,
		JobName:       result.Analysis.Title(),
		ClientCode:    result.Analysis.Code(),
		ClientName:    result.Analysis.ClientName,
		ProjectOwner:  result.Analysis.ProjectOwner,
		TeamID:        result.Reservation.TeamsID,
		SharepointURL: result.Reservation.SharepointURL,
		EmailBody:     result.EmailBody,
		TeamsPost:     result.TeamsPost,
		FullAnalysis:  result.Analysis.Raw,
	})
}
