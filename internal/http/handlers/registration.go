package handlers

import (
	"errors"
	"net/http"

	"github.com/geocoder89/impactfest/internal/domain/registration"
	"github.com/geocoder89/impactfest/internal/flows"
	"github.com/geocoder89/impactfest/internal/notifications"
	"github.com/gin-gonic/gin"
)

// multipart parts above this are spooled to disk by net/http
const multipartMemory = 8 << 20

type RegistrationHandler struct {
	sets *FlowSets
}

func NewRegistrationHandler(sets *FlowSets) *RegistrationHandler {
	return &RegistrationHandler{sets: sets}
}

type registrationResponse struct {
	State   flows.State `json:"state"`
	Message string      `json:"message"`
	Notices interface{} `json:"notices"`
}

// Submit applies the posted fields to the session's registration form and
// submits it.
func (h *RegistrationHandler) Submit(ctx *gin.Context) {
	set, ok := h.sets.setFor(ctx)
	if !ok {
		return
	}
	flow := set.Registration

	if err := ctx.Request.ParseMultipartForm(multipartMemory); err != nil {
		RespondBadRequest(ctx, "Invalid multipart body", gin.H{"reason": err.Error()})
		return
	}

	form := ctx.Request.MultipartForm
	for _, field := range registration.FieldNames {
		if field == registration.FieldPaymentScreenshot {
			continue
		}
		name, value, ok := firstValue(form.Value, registration.InputNames(field))
		if !ok {
			continue
		}
		if err := flow.UpdateField(field, value); err != nil {
			RespondBadRequest(ctx, "Invalid field", gin.H{"field": name})
			return
		}
	}

	for _, name := range registration.InputNames(registration.FieldPaymentScreenshot) {
		files := form.File[name]
		if len(files) == 0 {
			continue
		}
		upload, err := registration.UploadFromFileHeader(files[0])
		if err != nil {
			RespondBadRequest(ctx, "Could not read payment screenshot", nil)
			return
		}
		flow.SelectFile(upload)
		break
	}

	cctx, collected := notifications.Collect(ctx.Request.Context())
	err := flow.Submit(cctx)
	notices := collected()

	switch {
	case err == nil:
		ctx.JSON(http.StatusOK, registrationResponse{State: flow.State(), Message: lastText(notices), Notices: nonNil(notices)})
	case errors.Is(err, flows.ErrSubmitInFlight):
		respondFlowError(ctx, http.StatusConflict, "submit_in_flight", "A submission is already in progress", nil, notices)
	case errors.Is(err, flows.ErrAlreadySubmitted):
		respondFlowError(ctx, http.StatusConflict, "already_submitted", "Registration already submitted; reset to register again", nil, notices)
	default:
		h.respondFailure(ctx, flow, err, notices)
	}
}

func (h *RegistrationHandler) respondFailure(ctx *gin.Context, flow *flows.RegistrationFlow, err error, notices []notifications.Notice) {
	var failure *flows.Failure
	if !errors.As(err, &failure) {
		_ = ctx.Error(err)
		RespondInternal(ctx, "Registration failed")
		return
	}

	switch failure.Kind {
	case flows.FailureValidation:
		respondFlowError(ctx, http.StatusUnprocessableEntity, "validation_failed", failure.Message,
			gin.H{"fields": flow.Errors()}, notices)
	case flows.FailureAuthMissing:
		respondFlowError(ctx, http.StatusUnauthorized, "auth_missing", failure.Message, nil, notices)
	default:
		_ = ctx.Error(err)
		respondFlowError(ctx, http.StatusBadGateway, "upstream_"+string(failure.Kind), failure.Message, nil, notices)
	}
}

// firstValue picks the first of names present in the posted values, so the
// canonical spelling wins over an alias sent alongside it.
func firstValue(values map[string][]string, names []string) (string, string, bool) {
	for _, name := range names {
		if v := values[name]; len(v) > 0 {
			return name, v[0], true
		}
	}
	return "", "", false
}

// Reset blanks the session's registration form ("Register Another").
func (h *RegistrationHandler) Reset(ctx *gin.Context) {
	set, ok := h.sets.setFor(ctx)
	if !ok {
		return
	}

	if err := set.Registration.Reset(); err != nil {
		RespondConflict(ctx, "submit_in_flight", "A submission is already in progress")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"state": set.Registration.State(),
		"form":  set.Registration.Form(),
	})
}

// Status reports the session's registration state and field errors.
func (h *RegistrationHandler) Status(ctx *gin.Context) {
	set, ok := h.sets.setFor(ctx)
	if !ok {
		return
	}
	flow := set.Registration

	resp := gin.H{
		"state":  flow.State(),
		"form":   flow.Form(),
		"errors": flow.Errors(),
	}
	if f := flow.LastFailure(); f != nil {
		resp["lastFailure"] = gin.H{"kind": f.Kind, "message": f.Message}
	}
	ctx.JSON(http.StatusOK, resp)
}
