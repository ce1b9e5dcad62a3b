package api

import (
	"context"
	"net/http"
	"time"

	authDelivery "devtodo-backend/internal/auth/delivery"
	authUsecase "devtodo-backend/internal/auth/usecase"
	claudeDelivery "devtodo-backend/internal/claude/delivery"
	claudeUsecase "devtodo-backend/internal/claude/usecase"
	"devtodo-backend/internal/claude/watcher"
	dockerDelivery "devtodo-backend/internal/docker/delivery"
	dockerUsecase "devtodo-backend/internal/docker/usecase"
	gitDelivery "devtodo-backend/internal/git/delivery"
	gitUsecase "devtodo-backend/internal/git/usecase"
	integrationsDelivery "devtodo-backend/internal/integrations/delivery"
	taskDelivery "devtodo-backend/internal/task/delivery"
	taskRepository "devtodo-backend/internal/task/repository"
	taskUsecase "devtodo-backend/internal/task/usecase"
	"devtodo-backend/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
)

// DockerPinger reports whether the Docker engine answers
type DockerPinger interface {
	Ping(ctx context.Context) error
}

// Services is everything the HTTP layer is wired from
type Services struct {
	Config *config.Config

	Auth   authUsecase.AuthUsecase
	Tasks  taskUsecase.TaskUsecase
	Repos  taskRepository.GitRepoRepository
	Commit *gitUsecase.CommitMatcher

	Extraction    claudeUsecase.ExtractionUsecase
	State         claudeUsecase.StateUsecase
	Todos         claudeUsecase.TodoUsecase
	Conversations claudeUsecase.ConversationUsecase
	ChatWatcher   *watcher.ChatWatcher
	Pending       *watcher.PendingActionsBuffer

	Docker       dockerUsecase.DockerUsecase
	DockerEngine DockerPinger

	Google    integrationsDelivery.GoogleAuth
	Emails    integrationsDelivery.EmailSource
	Events    integrationsDelivery.EventSource
	Workflows integrationsDelivery.WorkflowSource

	Settings *RuntimeSettings
	Ollama   OllamaPinger
}

type Handler struct {
	config       *config.Config
	authUsecase  authUsecase.AuthUsecase
	dockerEngine DockerPinger

	authHandler         *authDelivery.AuthHandler
	taskHandler         *taskDelivery.TaskHandler
	gitHandler          *gitDelivery.GitHandler
	claudeHandler       *claudeDelivery.ClaudeHandler
	dockerHandler       *dockerDelivery.DockerHandler
	integrationsHandler *integrationsDelivery.IntegrationsHandler
	settingsHandler     *SettingsHandler
}

func NewHandler(s Services) *Handler {
	limiter := authDelivery.NewIPRateLimiter(authDelivery.AuthRateWindow, authDelivery.AuthRateMax)
	claudeHandler := claudeDelivery.NewClaudeHandler(
		s.Extraction,
		s.State,
		s.Todos,
		s.Conversations,
		s.ChatWatcher,
		s.Pending,
		s.Config.ClaudeChatsPath,
	)

	return &Handler{
		config:       s.Config,
		authUsecase:  s.Auth,
		dockerEngine: s.DockerEngine,

		authHandler:         authDelivery.NewAuthHandler(s.Auth, limiter),
		taskHandler:         taskDelivery.NewTaskHandler(s.Tasks),
		gitHandler:          gitDelivery.NewGitHandler(s.Commit, s.Repos),
		claudeHandler:       claudeHandler,
		dockerHandler:       dockerDelivery.NewDockerHandler(s.Docker),
		integrationsHandler: integrationsDelivery.NewIntegrationsHandler(s.Google, s.Emails, s.Events, s.Workflows),
		settingsHandler:     NewSettingsHandler(s.Settings, s.Ollama),
	}
}

// Router builds the gin engine with every route mounted
func (h *Handler) Router() *gin.Engine {
	r := gin.Default()
	SetupRoutes(r, h)
	return r
}

// NewServer wraps the router in CORS handling and returns an unstarted server
func (h *Handler) NewServer(addr string) *http.Server {
	c := cors.New(cors.Options{
		AllowedOrigins:   h.config.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "Accept", "Origin", "Cache-Control", "X-Requested-With"},
		AllowCredentials: true,
	})

	return &http.Server{
		Addr:              addr,
		Handler:           c.Handler(h.Router()),
		ReadHeaderTimeout: 10 * time.Second,
	}
}
