package notify

// NoticeLogger persists notices. audit.Service implements it.
type NoticeLogger interface {
	LogNotice(action, message string, urgent bool)
}

// Audit records every notice in the audit trail.
type Audit struct {
	logger NoticeLogger
}

func NewAudit(logger NoticeLogger) *Audit {
	return &Audit{logger: logger}
}

func (a *Audit) Report(event Event) {
	if a.logger == nil {
		return
	}
	a.logger.LogNotice("import_"+string(event.Kind), event.Message, event.Urgent)
}
