package router

import (
	"net/http"

	"github.com/senyabanana/common-elements/internal/handlers"
	"github.com/senyabanana/common-elements/internal/middleware"

	"github.com/rs/zerolog"
)

// Handlers - обработчики, которые регистрирует роутер.
type Handlers struct {
	RFP      *handlers.RFPHandler
	Approval *handlers.ApprovalHandler
	Proposal *handlers.ProposalHandler
	Message  *handlers.MessageHandler
	Forum    *handlers.ForumHandler
	Health   http.HandlerFunc
}

func InitRoutes(h Handlers, auth *middleware.Auth, limiter *middleware.RateLimiter, logger zerolog.Logger) http.Handler {
	protected := http.NewServeMux()

	protected.HandleFunc("GET /api/rfps", h.RFP.GetRFPs)
	protected.HandleFunc("POST /api/rfps/new", h.RFP.CreateRFP)
	protected.HandleFunc("GET /api/rfps/my", h.RFP.GetUserRFPs)
	protected.HandleFunc("GET /api/rfps/{rfpId}", h.RFP.GetRFP)
	protected.HandleFunc("GET /api/rfps/{rfpId}/access", h.RFP.GetAccess)
	protected.HandleFunc("GET /api/rfps/{rfpId}/details", h.RFP.GetPrivateDetails)
	protected.HandleFunc("PUT /api/rfps/{rfpId}/status", h.RFP.UpdateRFPStatus)

	protected.HandleFunc("POST /api/rfps/{rfpId}/request_to_bid", h.Approval.RequestToBid)
	protected.HandleFunc("GET /api/rfps/{rfpId}/approvals", h.Approval.GetRFPApprovals)
	protected.HandleFunc("GET /api/approvals/pending", h.Approval.GetPendingApprovals)
	protected.HandleFunc("PUT /api/approvals/{approvalId}/resolve", h.Approval.ResolveApproval)

	protected.HandleFunc("POST /api/proposals/new", h.Proposal.CreateProposal)
	protected.HandleFunc("GET /api/rfps/{rfpId}/proposals", h.Proposal.GetRFPProposals)
	protected.HandleFunc("GET /api/proposals/{proposalId}", h.Proposal.GetProposal)
	protected.HandleFunc("PATCH /api/proposals/{proposalId}/edit", h.Proposal.EditProposal)
	protected.HandleFunc("PUT /api/proposals/{proposalId}/status", h.Proposal.UpdateProposalStatus)

	protected.HandleFunc("GET /api/rfps/{rfpId}/messages", h.Message.GetThread)
	protected.Handle("POST /api/rfps/{rfpId}/messages", limiter.Limit(http.HandlerFunc(h.Message.SendMessage)))
	protected.HandleFunc("PUT /api/rfps/{rfpId}/messages/read", h.Message.MarkAsRead)
	protected.HandleFunc("GET /api/messages/unread", h.Message.GetUnread)
	protected.HandleFunc("GET /api/ws", h.Message.ServeWS)

	protected.HandleFunc("GET /api/forum/categories", h.Forum.GetCategories)
	protected.HandleFunc("GET /api/forum/posts", h.Forum.GetPosts)
	protected.HandleFunc("POST /api/forum/posts/new", h.Forum.CreatePost)
	protected.HandleFunc("GET /api/forum/posts/{postId}", h.Forum.GetPost)
	protected.HandleFunc("PATCH /api/forum/posts/{postId}/edit", h.Forum.EditPost)
	protected.HandleFunc("GET /api/forum/posts/{postId}/comments", h.Forum.GetComments)
	protected.HandleFunc("POST /api/forum/posts/{postId}/comments", h.Forum.CreateComment)
	protected.HandleFunc("POST /api/forum/posts/{postId}/vote", h.Forum.VotePost)
	protected.HandleFunc("PATCH /api/forum/comments/{commentId}/edit", h.Forum.EditComment)
	protected.HandleFunc("POST /api/forum/comments/{commentId}/vote", h.Forum.VoteComment)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/ping", handlers.PingHandler)
	mux.HandleFunc("GET /api/health", h.Health)
	mux.Handle("/api/", auth.Authenticate(protected))

	return middleware.RequestLogger(logger)(mux)
}
