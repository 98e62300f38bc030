package student

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/paathshala/backend/core"
	"github.com/paathshala/backend/core/parent"
	"github.com/paathshala/backend/core/user"
)

var (
	ErrNotFound         = errors.New("student not found")
	ErrRollNumberExists = errors.New("a student with this roll number already exists")
)

type (
	Repository interface {
		CheckRollNumberUniqueness(ctx context.Context, rollNumber string, exec ...core.DBExecutor) error
		// CreateWithUser writes the login identity and the student profile as
		// one transaction; neither row is visible unless both commit.
		CreateWithUser(ctx context.Context, usr user.User, std Student) (Student, error)
		GetStudent(ctx context.Context, filter GetFilter, exec ...core.DBExecutor) (Student, error)
		QueryStudents(ctx context.Context, filter QueryFilter, exec ...core.DBExecutor) ([]Student, error)
		UpdateStudent(ctx context.Context, std Student, exec ...core.DBExecutor) (Student, error)
		DeleteStudentsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) error
	}

	ServiceInterface interface {
		CheckRollNumber(rollNumber string) error
		Create(ns NewStudent) (Student, error)
		Query(filter QueryFilter) ([]Student, error)
		GetByID(id string) (Student, error)
		GetByUserID(userID string) (Student, error)
		Update(id string, us UpdateStudent) (Student, error)
		Delete(ids ...string) error
	}

	service struct {
		repo      Repository
		usrRepo   user.Repository
		parentSvc parent.ServiceInterface
		mailSvc   core.EmailService
		conf      *core.Config
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(repo Repository, usrRepo user.Repository, parentSvc parent.ServiceInterface, mailSvc core.EmailService, conf *core.Config) ServiceInterface {
	return &service{
		repo:      repo,
		usrRepo:   usrRepo,
		parentSvc: parentSvc,
		mailSvc:   mailSvc,
		conf:      conf,
	}
}

func (svc *service) CheckRollNumber(rollNumber string) error {
	err := svc.repo.CheckRollNumberUniqueness(context.Background(), rollNumber)
	if err != nil {
		if errors.Cause(err) == ErrRollNumberExists {
			return core.NewConflictError("roll_number", rollNumber)
		}
		return err
	}
	return nil
}

func (svc *service) Create(ns NewStudent) (Student, error) {
	ctx := context.Background()

	if err := svc.CheckRollNumber(ns.RollNumber); err != nil {
		return Student{}, err
	}

	email := deriveEmail(ns.FirstName, ns.RollNumber, svc.conf.EmailDomain)
	if err := svc.usrRepo.CheckEmailUniqueness(ctx, email, nil); err != nil {
		if errors.Cause(err) == user.ErrEmailExists {
			return Student{}, core.NewConflictError("email", email)
		}
		return Student{}, err
	}

	var parentID null.String
	if ns.ParentID != "" {
		if _, err := svc.parentSvc.GetByID(ns.ParentID); err != nil {
			if errors.Cause(err) == parent.ErrNotFound {
				return Student{}, core.NewNotFoundError("parent", ns.ParentID)
			}
			return Student{}, err
		}
		parentID = null.StringFrom(ns.ParentID)
	}

	now := time.Now().UTC()
	usr := user.User{
		Email:     email,
		FirstName: ns.FirstName,
		LastName:  ns.LastName,
		Role:      user.RoleStudent,
		CreatedAt: now,
		UpdatedAt: now,
	}
	usr.SetActive(true)
	pwd := initialPassword(ns.LastName, ns.RollNumber)
	if err := usr.SetPassword(pwd); err != nil {
		return Student{}, errors.Wrap(err, "hashing password")
	}

	std, err := svc.repo.CreateWithUser(ctx, usr, Student{
		Grade:      ns.Grade,
		Section:    ns.Section,
		RollNumber: ns.RollNumber,
		ParentID:   parentID,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		// a raced duplicate slips past the pre-checks and is rejected by the
		// store's unique constraint at commit
		switch errors.Cause(err) {
		case ErrRollNumberExists:
			return Student{}, core.NewConflictError("roll_number", ns.RollNumber)
		case user.ErrEmailExists:
			return Student{}, core.NewConflictError("email", email)
		}
		return Student{}, err
	}

	sendWelcomeEmail(svc.mailSvc, std.User, pwd)
	return std, nil
}

func (svc *service) Query(filter QueryFilter) ([]Student, error) {
	return svc.repo.QueryStudents(context.Background(), filter)
}

func (svc *service) GetByID(id string) (Student, error) {
	return svc.repo.GetStudent(context.Background(), GetFilter{ID: id})
}

func (svc *service) GetByUserID(userID string) (Student, error) {
	return svc.repo.GetStudent(context.Background(), GetFilter{UserID: userID})
}

func (svc *service) Update(id string, us UpdateStudent) (Student, error) {
	ctx := context.Background()

	std, err := svc.repo.GetStudent(ctx, GetFilter{ID: id})
	if err != nil {
		return Student{}, err
	}
	if us.Grade != "" {
		std.Grade = us.Grade
	}
	if us.Section != "" {
		std.Section = us.Section
	}
	if us.ParentID != "" {
		if _, err := svc.parentSvc.GetByID(us.ParentID); err != nil {
			if errors.Cause(err) == parent.ErrNotFound {
				return Student{}, core.NewNotFoundError("parent", us.ParentID)
			}
			return Student{}, err
		}
		std.ParentID = null.StringFrom(us.ParentID)
	}
	std.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateStudent(ctx, std)
}

func (svc *service) Delete(ids ...string) error {
	return svc.repo.DeleteStudentsByID(context.Background(), ids)
}

// deriveEmail builds the login email from the student's first name and roll
// number, eg. "Asim" + "RN101" -> asim.rn101@paathshala.edu.np.
func deriveEmail(firstName, rollNumber, domain string) string {
	first := strings.ToLower(strings.ReplaceAll(firstName, " ", ""))
	return fmt.Sprintf("%s.%s@%s", first, strings.ToLower(rollNumber), domain)
}

// initialPassword derives the one-time password emailed to the new account.
func initialPassword(lastName, rollNumber string) string {
	return fmt.Sprintf("%s.%s", strings.ToLower(lastName), strings.ToLower(rollNumber))
}

func sendWelcomeEmail(mailSvc core.EmailService, usr *user.User, pwd string) {
	if usr == nil {
		return
	}
	mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.FullName(), Address: usr.Email}},
		Subject:      "Welcome to Paathshala",
		TemplateName: "welcome",
		TemplateData: struct {
			Name     string
			Email    string
			Password string
		}{usr.FirstName, usr.Email, pwd},
	})
}
