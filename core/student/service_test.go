package student_test

import (
	"context"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paathshala/backend/core"
	"github.com/paathshala/backend/core/parent"
	"github.com/paathshala/backend/core/student"
	"github.com/paathshala/backend/core/user"
	emailsvc "github.com/paathshala/backend/services/email"
	logsvc "github.com/paathshala/backend/services/logger"
	dummydb "github.com/paathshala/backend/storage/database/dummy"
)

func setup(t *testing.T) (student.ServiceInterface, parent.ServiceInterface, user.Repository, *dummydb.DB) {
	t.Helper()

	conf := &core.Config{
		TestMode:                  true,
		WorkDir:                   core.FindWorkDir(),
		AppName:                   "Paathshala",
		SecretKey:                 "t0p-s3cr3t",
		EmailDomain:               "paathshala.edu.np",
		PasswordResetTimeoutDelta: 3 * 24 * time.Hour,
	}

	logger := logsvc.NewRollbarLogger(log.New(os.Stdout, "TEST : ", 0), conf)
	logger.Enable(false)
	core.ParseEmailTemplates(conf, logger)

	db, err := dummydb.Open()
	require.NoError(t, err)
	usrRepo := dummydb.NewUserRepository(db)
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	parentSvc := parent.NewService(dummydb.NewParentRepository(db), usrRepo, mailSvc, conf)
	svc := student.NewService(dummydb.NewStudentRepository(db), usrRepo, parentSvc, mailSvc, conf)

	emailsvc.ClearSentMessages()
	return svc, parentSvc, usrRepo, db
}

func TestService_Create_derivesIdentity(t *testing.T) {
	svc, _, usrRepo, _ := setup(t)

	std, err := svc.Create(student.NewStudent{
		FirstName:  "Asim",
		LastName:   "Shrestha",
		Grade:      "10",
		Section:    "A",
		RollNumber: "RN101",
	})
	require.NoError(t, err)
	require.NotNil(t, std.User)

	assert.Equal(t, "asim.rn101@paathshala.edu.np", std.User.Email)
	assert.Equal(t, user.RoleStudent, std.User.Role)
	assert.True(t, std.User.Active())
	assert.Equal(t, std.UserID, std.User.ID)

	// the one-time password is bcrypt-hashed, never stored in clear
	assert.NoError(t, std.User.CheckPassword("shrestha.rn101"))

	// ...and only leaves the system via the welcome email
	require.Len(t, emailsvc.SentMessages, 1)
	assert.Contains(t, emailsvc.SentMessages[0].TextContent, "shrestha.rn101")

	// identity is persisted
	_, err = usrRepo.GetUser(context.Background(), user.GetFilter{Email: std.User.Email})
	assert.NoError(t, err)
}

func TestService_Create_duplicateRollNumber(t *testing.T) {
	svc, _, _, _ := setup(t)

	_, err := svc.Create(student.NewStudent{
		FirstName: "Asim", LastName: "Shrestha", Grade: "10", Section: "A", RollNumber: "RN101",
	})
	require.NoError(t, err)

	_, err = svc.Create(student.NewStudent{
		FirstName: "Bina", LastName: "Thapa", Grade: "10", Section: "B", RollNumber: "RN101",
	})
	var conflictErr *core.ConflictError
	require.ErrorAs(t, err, &conflictErr)
	assert.Equal(t, "roll_number", conflictErr.Field)
}

func TestService_Create_unknownParent(t *testing.T) {
	svc, _, _, _ := setup(t)

	_, err := svc.Create(student.NewStudent{
		FirstName: "Asim", LastName: "Shrestha", Grade: "10", Section: "A", RollNumber: "RN101",
		ParentID: "3b241101-e2bb-4255-8caf-4136c566a962",
	})
	var notFoundErr *core.NotFoundError
	require.ErrorAs(t, err, &notFoundErr)
	assert.Equal(t, "parent", notFoundErr.Kind)
}

func TestService_Create_linksParent(t *testing.T) {
	svc, parentSvc, _, _ := setup(t)

	par, err := parentSvc.Create(parent.NewParent{
		FirstName: "Pa", LastName: "Rent", Phone: "9841000000", Address: "Kathmandu",
	})
	require.NoError(t, err)

	std, err := svc.Create(student.NewStudent{
		FirstName: "Asim", LastName: "Shrestha", Grade: "10", Section: "A", RollNumber: "RN101",
		ParentID: par.ID,
	})
	require.NoError(t, err)
	require.True(t, std.ParentID.Valid)
	assert.Equal(t, par.ID, std.ParentID.String)
}

// A failed profile write must not leave an orphaned login identity behind.
func TestService_Create_rollsBackIdentityOnProfileFailure(t *testing.T) {
	svc, _, usrRepo, db := setup(t)

	db.FailProfileWrite = assert.AnError
	_, err := svc.Create(student.NewStudent{
		FirstName: "Asim", LastName: "Shrestha", Grade: "10", Section: "A", RollNumber: "RN101",
	})
	require.Error(t, err)

	_, err = usrRepo.GetUser(context.Background(), user.GetFilter{Email: "asim.rn101@paathshala.edu.np"})
	assert.Equal(t, user.ErrNotFound, err)
	assert.Empty(t, emailsvc.SentMessages)

	// retrying after the fault heals succeeds
	db.FailProfileWrite = nil
	_, err = svc.Create(student.NewStudent{
		FirstName: "Asim", LastName: "Shrestha", Grade: "10", Section: "A", RollNumber: "RN101",
	})
	assert.NoError(t, err)
}

// Two concurrent creates racing on the same roll number: the pre-check may
// pass for both, but the store's uniqueness enforcement admits exactly one.
func TestService_Create_concurrentDuplicateRollNumber(t *testing.T) {
	svc, _, usrRepo, _ := setup(t)

	ns := student.NewStudent{
		FirstName: "Sita", LastName: "Sharma", Grade: "10", Section: "A", RollNumber: "RN500",
	}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Create(ns)
		}(i)
	}
	wg.Wait()

	var successes, conflicts int
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		var conflictErr *core.ConflictError
		require.ErrorAs(t, err, &conflictErr)
		conflicts++
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, conflicts)

	// exactly one identity+profile pair is visible
	students, err := svc.Query(student.QueryFilter{})
	require.NoError(t, err)
	assert.Len(t, students, 1)
	_, err = usrRepo.GetUser(context.Background(), user.GetFilter{Email: "sita.rn500@paathshala.edu.np"})
	assert.NoError(t, err)
}
