// Package server wires the API handlers behind a chi router. Everything
// request-governance related (CORS, limits, security headers) happens in
// the edge interceptor before these handlers run.
package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/evalion/evalion/internal/auth"
	"github.com/evalion/evalion/internal/chat"
	"github.com/evalion/evalion/internal/payment"
	"github.com/evalion/evalion/internal/tts"
)

const version = "v0.1.0"

type Deps struct {
	Logger   zerolog.Logger
	Chat     *chat.Service
	TTS      *tts.Client
	Auth     *auth.Service
	Payment  *payment.Service
	PromPath string
	Gatherer prometheus.Gatherer
}

type handlers struct {
	Deps
}

func NewRouter(deps Deps) http.Handler {
	h := &handlers{Deps: deps}

	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	r.Get("/version", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(version))
	})
	if deps.Gatherer != nil {
		r.Handle(deps.PromPath, promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/chat", h.chatReply)
		r.Get("/voice", h.listVoices)
		r.Post("/voice", h.synthesize)
		r.Post("/auth/signup", h.signup)
		r.Post("/auth/login", h.login)
		r.Post("/payment/checkout", h.checkout)
		r.Post("/payment/webhook", h.webhook)
	})

	return r
}

func (h *handlers) chatReply(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.Message == "" || len(body.Message) > 1000 {
		writeError(w, http.StatusBadRequest, "message must be between 1 and 1000 characters")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"response": h.Chat.Reply(body.Message),
	})
}

func (h *handlers) listVoices(w http.ResponseWriter, r *http.Request) {
	voices, err := h.TTS.Voices(r.Context())
	if err != nil {
		h.Logger.Warn().Err(err).Msg("voice catalogue unavailable, serving defaults")
		voices = tts.DefaultVoices()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"voices":  voices,
	})
}

func (h *handlers) synthesize(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text    string  `json:"text"`
		VoiceID string  `json:"voiceId"`
		Speed   float64 `json:"speed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.Text == "" || len(body.Text) > 5000 {
		writeError(w, http.StatusBadRequest, "text must be between 1 and 5000 characters")
		return
	}
	if body.VoiceID == "" {
		writeError(w, http.StatusBadRequest, "voiceId is required")
		return
	}
	if body.Speed != 0 && (body.Speed < 0.5 || body.Speed > 2.0) {
		writeError(w, http.StatusBadRequest, "speed must be between 0.5 and 2.0")
		return
	}

	result, err := h.TTS.Synthesize(r.Context(), tts.SynthesisRequest{
		Text:    body.Text,
		VoiceID: body.VoiceID,
		Speed:   body.Speed,
	})
	if err != nil {
		h.Logger.Error().Err(err).Msg("voice synthesis failed")
		writeError(w, http.StatusBadGateway, "failed to generate voice")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"message":  result.Message,
		"audioUrl": result.AudioURL,
	})
}

func (h *handlers) signup(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email           string `json:"email"`
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirmPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	sess, err := h.Auth.Signup(body.Email, body.Password, body.ConfirmPassword)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Signup successful",
		"userId":  sess.UserID,
		"token":   sess.Token,
	})
}

func (h *handlers) login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	sess, err := h.Auth.Login(body.Email, body.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Login successful",
		"userId":  sess.UserID,
		"token":   sess.Token,
	})
}

func (h *handlers) checkout(w http.ResponseWriter, r *http.Request) {
	var body struct {
		PlanID string `json:"planId"`
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.UserID == "" {
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}

	origin := r.Header.Get("Origin")
	if origin == "" {
		origin = "https://" + r.Host
	}

	result, err := h.Payment.Checkout(body.PlanID, body.UserID, origin)
	if err != nil {
		if err == payment.ErrUnknownPlan {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.Logger.Error().Err(err).Msg("checkout session failed")
		writeError(w, http.StatusBadGateway, "failed to create checkout session")
		return
	}

	if result.Free {
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": "Free plan activated successfully",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"sessionId":   result.SessionID,
		"checkoutUrl": result.CheckoutURL,
	})
}

func (h *handlers) webhook(w http.ResponseWriter, r *http.Request) {
	payloadBytes, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unable to read body")
		return
	}

	event, err := h.Payment.VerifyWebhook(payloadBytes, r.Header.Get("Stripe-Signature"))
	if err != nil {
		h.Logger.Warn().Err(err).Msg("webhook signature verification failed")
		writeError(w, http.StatusBadRequest, "webhook signature verification failed")
		return
	}

	switch event.Type {
	case "checkout.session.completed":
		h.Logger.Info().
			Str("client_reference_id", stringField(event.Data.Object, "client_reference_id")).
			Msg("checkout session completed")
	case "customer.subscription.deleted":
		h.Logger.Info().
			Str("customer", stringField(event.Data.Object, "customer")).
			Msg("subscription cancelled")
	case "invoice.payment_succeeded":
		h.Logger.Info().
			Str("customer", stringField(event.Data.Object, "customer")).
			Msg("payment succeeded")
	default:
		h.Logger.Debug().Str("type", string(event.Type)).Msg("unhandled webhook event")
	}

	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}

func stringField(obj map[string]any, key string) string {
	if s, ok := obj[key].(string); ok {
		return s
	}
	return ""
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
