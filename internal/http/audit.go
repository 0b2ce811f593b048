package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/perlego-sync/internal/entities"
)

type AuditController struct {
	audit AuditLog
}

func NewAuditController(audit AuditLog) *AuditController {
	return &AuditController{audit: audit}
}

// GetAuditEvents handles GET /api/audit
func (ac *AuditController) GetAuditEvents(c *gin.Context) {
	limit := parseLimit(c, 25, 100)
	offset := parseOffset(c)
	eventType := entities.AuditEventType(c.Query("type"))

	switch eventType {
	case "", entities.AuditEventImport, entities.AuditEventNotice, entities.AuditEventSettings:
	default:
		respondBadRequest(c, "unknown event type: "+string(eventType))
		return
	}

	events, total, err := ac.audit.GetEvents(eventType, limit, offset)
	if err != nil {
		respondInternalError(c, err, "audit events")
		return
	}
	if events == nil {
		events = []entities.AuditEvent{}
	}

	totalPages := (int(total) + limit - 1) / limit
	if totalPages < 1 {
		totalPages = 1
	}

	c.JSON(http.StatusOK, PaginatedResponse{
		Data:       events,
		Total:      total,
		Limit:      limit,
		Offset:     offset,
		HasMore:    int64(offset+len(events)) < total,
		TotalPages: totalPages,
	})
}
