package tests

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"testing"
	"time"

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
	dummydb "github.com/paathshala/backend/storage/database/dummy"
)

var (
	conf *core.Config
	db   *dummydb.DB
	app  echoapi.Server

	usrRepo user.Repository

	usrSvc        user.ServiceInterface
	studentSvc    student.ServiceInterface
	teacherSvc    teacher.ServiceInterface
	parentSvc     parent.ServiceInterface
	courseSvc     course.ServiceInterface
	assignmentSvc assignment.ServiceInterface
	attendanceSvc attendance.ServiceInterface
	postSvc       post.ServiceInterface

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errForbidden    = httpErr{Error: "permission denied"}
)

func TestMain(m *testing.M) {
	conf = &core.Config{
		TestMode: true,
		Env:      "TEST",
		WorkDir:  core.FindWorkDir(),

		AppName:         "Paathshala",
		SecretKey:       "t0p-s3cr3t",
		EmailDomain:     "paathshala.edu.np",
		FrontendBaseURL: "http://localhost:3000",

		JWTExpirationDelta:        10 * time.Minute,
		JWTRefreshExpirationDelta: 4 * time.Hour,
		PasswordResetTimeoutDelta: 3 * 24 * time.Hour,
	}

	logger := logsvc.NewRollbarLogger(log.New(os.Stdout, "TEST : ", 0), conf)
	logger.Enable(false)

	// set up validators & translators
	enLocale := en.New()
	translator, _ := ut.New(enLocale, enLocale).GetTranslator(enLocale.Locale())
	validate := validator.New()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	course.InitValidators(validate, translator)
	attendance.InitValidators(validate, translator)
	core.ParseEmailTemplates(conf, logger)

	// set up DB & repos
	db, _ = dummydb.Open()
	usrRepo = dummydb.NewUserRepository(db)

	// set up services
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	usrSvc = user.NewService(usrRepo, mailSvc, conf)
	parentSvc = parent.NewService(dummydb.NewParentRepository(db), usrRepo, mailSvc, conf)
	studentSvc = student.NewService(dummydb.NewStudentRepository(db), usrRepo, parentSvc, mailSvc, conf)
	teacherSvc = teacher.NewService(dummydb.NewTeacherRepository(db), usrRepo, mailSvc, conf)
	courseSvc = course.NewService(dummydb.NewCourseRepository(db), teacherSvc, studentSvc)
	assignmentSvc = assignment.NewService(dummydb.NewAssignmentRepository(db), courseSvc, studentSvc)
	attendanceSvc = attendance.NewService(dummydb.NewAttendanceRepository(db), studentSvc)
	postSvc = post.NewService(dummydb.NewPostRepository(db))

	// set up server
	app = echoapi.NewServer(&echoapi.ServerDeps{
		Conf:           conf,
		Logger:         logger,
		DisableReqLogs: true,
		UserSvc:        usrSvc,
		StudentSvc:     studentSvc,
		TeacherSvc:     teacherSvc,
		ParentSvc:      parentSvc,
		CourseSvc:      courseSvc,
		AssignmentSvc:  assignmentSvc,
		AttendanceSvc:  attendanceSvc,
		PostSvc:        postSvc,
		Validate:       validate,
		Translator:     translator,
	})

	os.Exit(m.Run())
}

func resetDB(t *testing.T) {
	t.Helper()
	db.Reset()
	emailsvc.ClearSentMessages()
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr user.User) string {
	t.Helper()
	claims := echoapi.GetUserClaims(usr)
	token, err := echoapi.GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
