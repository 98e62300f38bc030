package echoapi

import (
	"context"
	"net/http"
	"sync"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/paathshala/backend/core"
	"github.com/paathshala/backend/core/assignment"
	"github.com/paathshala/backend/core/attendance"
	"github.com/paathshala/backend/core/course"
	"github.com/paathshala/backend/core/parent"
	"github.com/paathshala/backend/core/post"
	"github.com/paathshala/backend/core/student"
	"github.com/paathshala/backend/core/teacher"
	"github.com/paathshala/backend/core/user"
)

var (
	validate   *validator.Validate
	translator ut.Translator
)

type (
	ServerDeps struct {
		Conf           *core.Config
		Logger         core.Logger
		DisableReqLogs bool

		UserSvc       user.ServiceInterface
		StudentSvc    student.ServiceInterface
		TeacherSvc    teacher.ServiceInterface
		ParentSvc     parent.ServiceInterface
		CourseSvc     course.ServiceInterface
		AssignmentSvc assignment.ServiceInterface
		AttendanceSvc attendance.ServiceInterface
		PostSvc       post.ServiceInterface

		Validate   *validator.Validate
		Translator ut.Translator
	}

	Server interface {
		http.Handler
		Start() error
		Stop(context.Context) error
		// ShutdownSignal is closed when an unrecoverable error asks for a
		// graceful shutdown.
		ShutdownSignal() <-chan struct{}
	}

	server struct {
		deps *ServerDeps
		app  *echo.Echo

		shutdownOnce sync.Once
		shutdown     chan struct{}
	}
)

var _ Server = (*server)(nil)

func NewServer(deps *ServerDeps) Server {
	ConfigureAuth(deps.Conf)
	validate = deps.Validate
	translator = deps.Translator

	s := &server{
		deps:     deps,
		app:      echo.New(),
		shutdown: make(chan struct{}),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.deps.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(s.deps.Conf.Debug || s.deps.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.signalShutdown)
	s.app.Debug = s.deps.Conf.Debug
	s.app.HideBanner = true

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(jwtConfig)

	registerUserAPI(v1, jwt, s.deps.UserSvc)
	registerStudentAPI(v1, jwt, s.deps)
	registerTeacherAPI(v1, jwt, s.deps)
	registerParentAPI(v1, jwt, s.deps)
	registerCourseAPI(v1, jwt, s.deps)
	registerAssignmentAPI(v1, jwt, s.deps)
	registerAttendanceAPI(v1, jwt, s.deps)
	registerPostAPI(v1, jwt, s.deps)
}

func (s *server) signalShutdown() {
	s.shutdownOnce.Do(func() { close(s.shutdown) })
}

func (s *server) ShutdownSignal() <-chan struct{} { return s.shutdown }

func (s *server) Start() error {
	return s.app.Start(s.deps.Conf.Server.Addr)
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Paathshala API!")
}
