package handler

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/msomdec/meta-pet-registry/internal/domain"
	"github.com/msomdec/meta-pet-registry/internal/service"
	"github.com/msomdec/meta-pet-registry/internal/view"
	"github.com/starfederation/datastar-go/datastar"
)

// maxRequestBody is the avatar cap plus room for the text fields and
// multipart framing.
const maxRequestBody = service.MaxAvatarSize + 64<<10

const maxMultipartMemory = 8 << 20

// RegistrationHandler serves the registration form, scrolls, and
// verification pages.
type RegistrationHandler struct {
	regs *service.RegistrationService
}

// NewRegistrationHandler creates a new RegistrationHandler.
func NewRegistrationHandler(regs *service.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{regs: regs}
}

// HandleForm renders the empty registration form.
// GET /
func (h *RegistrationHandler) HandleForm(w http.ResponseWriter, r *http.Request) {
	renderHTML(w, r, http.StatusOK, view.RegisterPage(view.RegisterForm{}, nil))
}

// HandleRegister processes a form submission.
// POST /register
func (h *RegistrationHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "Upload too large (5MB max)", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	in := service.RegistrationInput{
		OwnerEmail:  r.FormValue("owner_email"),
		OwnerHandle: r.FormValue("owner_handle"),
		PetName:     r.FormValue("pet_name"),
		MemorySeed:  r.FormValue("memory_seed"),
	}

	avatar, err := readAvatar(r)
	if err != nil {
		slog.Error("read avatar upload", "error", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	in.Avatar = avatar

	reg, err := h.regs.Register(r.Context(), in)
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			form := view.RegisterForm{
				OwnerEmail:  in.OwnerEmail,
				OwnerHandle: in.OwnerHandle,
				PetName:     in.PetName,
				MemorySeed:  in.MemorySeed,
			}
			renderHTML(w, r, http.StatusBadRequest, view.RegisterPage(form, verr.Messages))
			return
		}
		slog.Error("register pet", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/success/"+reg.PetID, http.StatusSeeOther)
}

// HandleValidate re-validates the form fields as the user types and
// patches #form-errors over SSE. Required fields left blank are not
// reported until the form is submitted.
// POST /register/validate
func (h *RegistrationHandler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	var signals struct {
		OwnerEmail  string `json:"ownerEmail"`
		OwnerHandle string `json:"ownerHandle"`
		PetName     string `json:"petName"`
		MemorySeed  string `json:"memorySeed"`
	}
	if err := datastar.ReadSignals(r, &signals); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	in, msgs := service.ValidateRegistration(service.RegistrationInput{
		OwnerEmail:  signals.OwnerEmail,
		OwnerHandle: signals.OwnerHandle,
		PetName:     signals.PetName,
		MemorySeed:  signals.MemorySeed,
	})
	live := msgs[:0]
	for _, m := range msgs {
		if (m == service.MsgInvalidEmail && in.OwnerEmail == "") || (m == service.MsgInvalidPetName && in.PetName == "") {
			continue
		}
		live = append(live, m)
	}

	sse := datastar.NewSSE(w, r)
	if err := sse.PatchElementTempl(view.FormErrors(live)); err != nil {
		slog.Error("patch form errors", "error", err)
	}
}

// HandleSuccess renders the confirmation page for a registration.
// GET /success/{id}
func (h *RegistrationHandler) HandleSuccess(w http.ResponseWriter, r *http.Request) {
	petID := r.PathValue("id")

	ok, err := h.regs.HasScroll(r.Context(), petID)
	if err != nil {
		slog.Error("check scroll", "pet_id", petID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	token, err := h.regs.VerificationToken(r.Context(), petID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}
		slog.Error("issue verification token", "pet_id", petID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	verifyURL := "/verify?" + url.Values{"token": {token}}.Encode()
	renderHTML(w, r, http.StatusOK, view.SuccessPage(petID, scrollPath(petID), verifyURL))
}

// HandleScroll serves the rendered scroll as a download.
// GET /scroll/{id}.pdf
func (h *RegistrationHandler) HandleScroll(w http.ResponseWriter, r *http.Request) {
	petID, ok := strings.CutSuffix(r.PathValue("file"), ".pdf")
	if !ok {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	data, err := h.regs.Scroll(r.Context(), petID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}
		slog.Error("read scroll", "pet_id", petID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="meta-pet-scroll-`+petID+`.pdf"`)
	http.ServeContent(w, r, service.ScrollFilename(petID), time.Time{}, bytes.NewReader(data))
}

// HandleVerify checks a scroll verification token.
// GET /verify?token=...
func (h *RegistrationHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	reg, err := h.regs.Verify(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidToken) {
			renderHTML(w, r, http.StatusNotFound, view.VerifyPage(view.VerifyResult{}))
			return
		}
		slog.Error("verify scroll", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	renderHTML(w, r, http.StatusOK, view.VerifyPage(view.VerifyResult{
		Valid:     true,
		PetID:     reg.PetID,
		PetName:   reg.PetName,
		IssuedUTC: reg.CreatedAtUTC,
		Proof:     service.ProofHash(reg.OwnerEmail),
	}))
}

func scrollPath(petID string) string {
	return "/scroll/" + service.ScrollFilename(petID)
}

// readAvatar returns the uploaded avatar, or nil when the form has none.
// At most one byte past the size cap is read so oversize files still fail
// validation.
func readAvatar(r *http.Request) (*service.AvatarUpload, error) {
	file, header, err := r.FormFile("avatar")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, service.MaxAvatarSize+1))
	if err != nil {
		return nil, err
	}
	return &service.AvatarUpload{Filename: header.Filename, Data: data}, nil
}
