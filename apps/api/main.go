package main

import (
	"context"
	"expvar"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	echoapi "github.com/paathshala/backend/apps/api/echo"
	"github.com/paathshala/backend/core"
	"github.com/paathshala/backend/core/assignment"
	"github.com/paathshala/backend/core/attendance"
	"github.com/paathshala/backend/core/course"
	"github.com/paathshala/backend/core/parent"
	"github.com/paathshala/backend/core/post"
	"github.com/paathshala/backend/core/student"
	"github.com/paathshala/backend/core/teacher"
	"github.com/paathshala/backend/core/user"
	emailsvc "github.com/paathshala/backend/services/email"
	logsvc "github.com/paathshala/backend/services/logger"
	"github.com/paathshala/backend/storage/database"
	"github.com/paathshala/backend/storage/database/sqlxrepos"
)

func main() {
	conf := core.NewConfig()

	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)

	if err := run(conf, logger); err != nil {
		logger.Fatal("running server", err)
	}
}

func run(conf *core.Config, logger core.Logger) error {
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	logger.Info("application initializing", "build", conf.Build, "env", conf.Env)
	defer logger.Info("application stopped")

	// set up validators & translators
	enLocale := en.New()
	translator, _ := ut.New(enLocale, enLocale).GetTranslator(enLocale.Locale())
	validate := validator.New()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	course.InitValidators(validate, translator)
	attendance.InitValidators(validate, translator)

	user.LoadCommonPasswords(conf, logger)
	core.ParseEmailTemplates(conf, logger)

	// set up DB
	db, err := database.Open(conf)
	if err != nil {
		return err
	}
	defer func() {
		logger.Info("database stopping", "host", conf.Database.Address())
		_ = db.Close()
	}()

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	usrRepo := sqlxrepos.NewUserRepository(db)
	usrSvc := user.NewService(usrRepo, mailSvc, conf)
	parentSvc := parent.NewService(sqlxrepos.NewParentRepository(db, usrRepo), usrRepo, mailSvc, conf)
	studentSvc := student.NewService(sqlxrepos.NewStudentRepository(db, usrRepo), usrRepo, parentSvc, mailSvc, conf)
	teacherSvc := teacher.NewService(sqlxrepos.NewTeacherRepository(db, usrRepo), usrRepo, mailSvc, conf)
	courseSvc := course.NewService(sqlxrepos.NewCourseRepository(db), teacherSvc, studentSvc)
	assignmentSvc := assignment.NewService(sqlxrepos.NewAssignmentRepository(db), courseSvc, studentSvc)
	attendanceSvc := attendance.NewService(sqlxrepos.NewAttendanceRepository(db), studentSvc)
	postSvc := post.NewService(sqlxrepos.NewPostRepository(db, usrRepo))

	// start debug server; not concerned with shutting this down when the
	// application is shutdown
	go func() {
		logger.Info("debug server listening", "host", conf.Server.DebugHost)
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error("debug server closed", err)
		}
	}()

	// start API server
	app := echoapi.NewServer(&echoapi.ServerDeps{
		Conf:          conf,
		Logger:        logger,
		UserSvc:       usrSvc,
		StudentSvc:    studentSvc,
		TeacherSvc:    teacherSvc,
		ParentSvc:     parentSvc,
		CourseSvc:     courseSvc,
		AssignmentSvc: assignmentSvc,
		AttendanceSvc: attendanceSvc,
		PostSvc:       postSvc,
		Validate:      validate,
		Translator:    translator,
	})

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("api server listening", "addr", conf.Server.Addr)
		serverErrors <- app.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return err
	case <-app.ShutdownSignal():
		logger.Warn("integrity issue detected, shutting down")
	case sig := <-shutdown:
		logger.Info("shutdown started", "signal", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
	defer cancel()
	if err := app.Stop(ctx); err != nil {
		return err
	}
	return nil
}
