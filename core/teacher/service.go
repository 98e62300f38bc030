package teacher

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/paathshala/backend/core"
	"github.com/paathshala/backend/core/user"
)

var ErrNotFound = errors.New("teacher not found")

type (
	Repository interface {
		// CreateWithUser writes the login identity and the teacher profile as
		// one transaction; neither row is visible unless both commit.
		CreateWithUser(ctx context.Context, usr user.User, tch Teacher) (Teacher, error)
		GetTeacher(ctx context.Context, filter GetFilter, exec ...core.DBExecutor) (Teacher, error)
		QueryTeachers(ctx context.Context, exec ...core.DBExecutor) ([]Teacher, error)
		UpdateTeacher(ctx context.Context, tch Teacher, exec ...core.DBExecutor) (Teacher, error)
		DeleteTeachersByID(ctx context.Context, ids []string, exec ...core.DBExecutor) error
	}

	ServiceInterface interface {
		Create(nt NewTeacher) (Teacher, error)
		QueryAll() ([]Teacher, error)
		GetByID(id string) (Teacher, error)
		GetByUserID(userID string) (Teacher, error)
		Update(id string, ut UpdateTeacher) (Teacher, error)
		Delete(ids ...string) error
	}

	service struct {
		repo    Repository
		usrRepo user.Repository
		mailSvc core.EmailService
		conf    *core.Config
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(repo Repository, usrRepo user.Repository, mailSvc core.EmailService, conf *core.Config) ServiceInterface {
	return &service{
		repo:    repo,
		usrRepo: usrRepo,
		mailSvc: mailSvc,
		conf:    conf,
	}
}

func (svc *service) Create(nt NewTeacher) (Teacher, error) {
	ctx := context.Background()

	email := deriveEmail(nt.FirstName, nt.LastName, svc.conf.EmailDomain)
	if err := svc.usrRepo.CheckEmailUniqueness(ctx, email, nil); err != nil {
		if errors.Cause(err) == user.ErrEmailExists {
			return Teacher{}, core.NewConflictError("email", email)
		}
		return Teacher{}, err
	}

	now := time.Now().UTC()
	usr := user.User{
		Email:     email,
		FirstName: nt.FirstName,
		LastName:  nt.LastName,
		Role:      user.RoleTeacher,
		CreatedAt: now,
		UpdatedAt: now,
	}
	usr.SetActive(true)
	pwd := initialPassword(nt.LastName, nt.FirstName)
	if err := usr.SetPassword(pwd); err != nil {
		return Teacher{}, errors.Wrap(err, "hashing password")
	}

	tch, err := svc.repo.CreateWithUser(ctx, usr, Teacher{
		Qualification: nt.Qualification,
		Experience:    nt.Experience,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		// raced duplicate rejected by the store's unique constraint at commit
		if errors.Cause(err) == user.ErrEmailExists {
			return Teacher{}, core.NewConflictError("email", email)
		}
		return Teacher{}, err
	}

	sendWelcomeEmail(svc.mailSvc, tch.User, pwd)
	return tch, nil
}

func (svc *service) QueryAll() ([]Teacher, error) {
	return svc.repo.QueryTeachers(context.Background())
}

func (svc *service) GetByID(id string) (Teacher, error) {
	return svc.repo.GetTeacher(context.Background(), GetFilter{ID: id})
}

func (svc *service) GetByUserID(userID string) (Teacher, error) {
	return svc.repo.GetTeacher(context.Background(), GetFilter{UserID: userID})
}

func (svc *service) Update(id string, ut UpdateTeacher) (Teacher, error) {
	ctx := context.Background()

	tch, err := svc.repo.GetTeacher(ctx, GetFilter{ID: id})
	if err != nil {
		return Teacher{}, err
	}
	if ut.Qualification != "" {
		tch.Qualification = ut.Qualification
	}
	if ut.Experience != "" {
		tch.Experience = ut.Experience
	}
	tch.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateTeacher(ctx, tch)
}

func (svc *service) Delete(ids ...string) error {
	return svc.repo.DeleteTeachersByID(context.Background(), ids)
}

// deriveEmail builds the login email from the teacher's names.
func deriveEmail(firstName, lastName, domain string) string {
	first := strings.ToLower(strings.ReplaceAll(firstName, " ", ""))
	last := strings.ToLower(strings.ReplaceAll(lastName, " ", ""))
	return fmt.Sprintf("%s.%s@%s", first, last, domain)
}

// initialPassword derives the one-time password emailed to the new account.
func initialPassword(lastName, firstName string) string {
	return fmt.Sprintf("%s.%s!Tt1", strings.ToLower(lastName), strings.ToLower(firstName))
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
