package app

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bjaus/mediator"
	"github.com/bjaus/mediator/behavior"
	"github.com/bjaus/mediator/httpresult"
	"github.com/bjaus/mediator/internal/users"
)

// maxEnvelopeSize bounds POST /dispatch bodies.
const maxEnvelopeSize = 1 << 20

func (a *App) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(a.logger), a.authenticate())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if a.cfg.Metrics.Enabled {
		r.GET(a.cfg.Metrics.Path, gin.WrapH(promhttp.HandlerFor(a.metrics, promhttp.HandlerOpts{})))
	}

	auth := r.Group("/auth")
	auth.POST("/register", a.registerUser)
	auth.POST("/login", a.login)

	u := r.Group("/users")
	u.POST("", a.createUser)
	u.GET("", a.listUsers)
	u.GET("/:id", a.getUser)
	u.PATCH("/:id", a.renameUser)

	r.POST("/dispatch", a.dispatchEnvelope)
	return r
}

func (a *App) registerUser(c *gin.Context) {
	var cmd users.RegisterUser
	if !bind(c, &cmd) {
		return
	}
	res, err := a.mediator.Send(c.Request.Context(), cmd)
	httpresult.Respond(c, res, err, httpresult.WithSuccessStatus(http.StatusCreated))
}

func (a *App) login(c *gin.Context) {
	var cmd users.Authenticate
	if !bind(c, &cmd) {
		return
	}
	res, err := a.mediator.Send(c.Request.Context(), cmd)
	httpresult.Respond(c, res, err)
}

func (a *App) createUser(c *gin.Context) {
	var cmd users.CreateUser
	if !bind(c, &cmd) {
		return
	}
	res, err := a.mediator.Send(c.Request.Context(), cmd)
	httpresult.Respond(c, res, err, httpresult.WithSuccessStatus(http.StatusCreated))
}

func (a *App) getUser(c *gin.Context) {
	res, err := a.mediator.Ask(c.Request.Context(), users.GetUser{ID: users.ID(c.Param("id"))})
	httpresult.Respond(c, res, err)
}

func (a *App) listUsers(c *gin.Context) {
	var q users.ListUsers
	if err := c.ShouldBindQuery(&q); err != nil {
		httpresult.Write(c, invalid(err))
		return
	}
	res, err := a.mediator.Ask(c.Request.Context(), q)
	httpresult.Respond(c, res, err)
}

func (a *App) renameUser(c *gin.Context) {
	var cmd users.RenameUser
	if !bind(c, &cmd) {
		return
	}
	cmd.ID = users.ID(c.Param("id"))
	res, err := a.mediator.Send(c.Request.Context(), cmd)
	httpresult.Respond(c, res, err)
}

// dispatchEnvelope accepts any bound envelope (typed or CloudEvents JSON)
// and answers with the dispatch Result.
func (a *App) dispatchEnvelope(c *gin.Context) {
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxEnvelopeSize))
	if err != nil {
		httpresult.Write(c, invalid(err))
		return
	}
	res, err := a.inbox.Process(c.Request.Context(), raw)
	httpresult.Respond(c, res, err)
}

func bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		httpresult.Write(c, invalid(err))
		return false
	}
	return true
}

func invalid(err error) mediator.Result[any] {
	return mediator.FailWith[any](mediator.CodeValidation, mediator.Invalid(err))
}

// authenticate turns HTTP basic credentials into a Principal by dispatching
// Authenticate. Requests without credentials continue anonymously; the
// Authorization behavior decides whether that is enough.
func (a *App) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		username, password, ok := c.Request.BasicAuth()
		if !ok {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		res, err := mediator.DispatchAs[users.User](ctx, a.mediator, users.Authenticate{Username: username, Password: password})
		if err != nil || !res.Success() {
			if err == nil {
				err = res.Err()
			}
			c.Header("WWW-Authenticate", `Basic realm="userapp"`)
			httpresult.Write(c, mediator.FailWith[any](mediator.CodeUnauthorized, err))
			c.Abort()
			return
		}

		u := res.MustValue()
		ctx = behavior.WithPrincipal(ctx, behavior.Principal{ID: string(u.ID), Roles: u.Roles})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.InfoContext(c.Request.Context(), "http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
