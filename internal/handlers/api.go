package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"quizclash-backend/internal/hub"
	"quizclash-backend/internal/mail"
	"quizclash-backend/internal/match"
	"quizclash-backend/internal/payment"
)

// API bundles the handlers' dependencies. Match operations go through the
// match core; plain reads go straight to the database package.
type API struct {
	Match  *match.Service
	Hub    *hub.Hub
	Pay    *payment.Client
	Mailer *mail.Mailer
	Log    *logrus.Logger
}

func NewAPI(svc *match.Service, h *hub.Hub, pay *payment.Client, mailer *mail.Mailer, log *logrus.Logger) *API {
	return &API{Match: svc, Hub: h, Pay: pay, Mailer: mailer, Log: log}
}

// Routes registers every endpoint on mux.
func (a *API) Routes(mux *http.ServeMux) {
	// Auth and profile.
	mux.HandleFunc("POST /api/auth/register", a.Register)
	mux.HandleFunc("POST /api/auth/login", a.Login)
	mux.HandleFunc("POST /api/auth/forgot-password", a.ForgotPassword)
	mux.HandleFunc("POST /api/auth/reset-password", a.ResetPassword)
	mux.HandleFunc("GET /api/users/me", a.Me)
	mux.HandleFunc("PUT /api/users/me", a.UpdateProfile)
	mux.HandleFunc("PUT /api/users/me/password", a.ChangePassword)

	// Lobbies.
	mux.HandleFunc("POST /api/lobbies", a.CreateLobby)
	mux.HandleFunc("GET /api/lobbies", a.ListLobbies)
	mux.HandleFunc("GET /api/lobbies/{id}", a.GetLobby)
	mux.HandleFunc("POST /api/lobbies/{id}/join", a.JoinLobby)
	mux.HandleFunc("POST /api/lobbies/join-by-code", a.JoinByCode)
	mux.HandleFunc("POST /api/lobbies/{id}/ready", a.SetReady)
	mux.HandleFunc("POST /api/lobbies/{id}/leave", a.LeaveLobby)
	mux.HandleFunc("POST /api/lobbies/{id}/start", a.StartMatch)

	// Matches.
	mux.HandleFunc("POST /api/matches/{id}/answer", a.SubmitAnswer)
	mux.HandleFunc("POST /api/matches/{id}/items", a.BringItems)
	mux.HandleFunc("GET /api/matches/{id}/players", a.MatchPlayers)
	mux.HandleFunc("GET /api/matches/{id}/hand", a.MatchHand)

	// Store and inventory.
	mux.HandleFunc("GET /api/store/items", a.StoreItems)
	mux.HandleFunc("POST /api/store/purchase", a.PurchaseItem)
	mux.HandleFunc("GET /api/inventory", a.Inventory)

	// Leaderboard.
	mux.HandleFunc("GET /api/leaderboard", a.Leaderboard)
	mux.HandleFunc("POST /api/leaderboard/update-score", a.UpdateScore)

	// Topics and questions.
	mux.HandleFunc("GET /api/topics", a.ListTopics)
	mux.HandleFunc("POST /api/topics", a.CreateTopic)
	mux.HandleFunc("PUT /api/topics/{id}", a.UpdateTopic)
	mux.HandleFunc("DELETE /api/topics/{id}", a.DeleteTopic)
	mux.HandleFunc("GET /api/topics/{id}/questions", a.ListQuestions)
	mux.HandleFunc("POST /api/questions", a.CreateQuestion)
	mux.HandleFunc("PUT /api/questions/{id}", a.UpdateQuestion)
	mux.HandleFunc("DELETE /api/questions/{id}", a.DeleteQuestion)

	// Payments.
	mux.HandleFunc("POST /api/payments", a.CreatePayment)
	mux.HandleFunc("GET /api/payments", a.ListPayments)
	mux.HandleFunc("POST /api/payments/{orderCode}/cancel", a.CancelPayment)
	mux.HandleFunc("POST /api/payments/webhook", a.PaymentWebhook)

	// Websockets.
	mux.HandleFunc("GET /ws/lobby/{id}", a.LobbyWS)
	mux.HandleFunc("GET /ws/match/{id}", a.MatchWS)
}
