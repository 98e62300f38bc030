package parent

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

var ErrNotFound = errors.New("parent not found")

type (
	Repository interface {
		// CreateWithUser writes the login identity and the parent profile as
		// one transaction; neither row is visible unless both commit.
		CreateWithUser(ctx context.Context, usr user.User, par Parent) (Parent, error)
		GetParent(ctx context.Context, filter GetFilter, exec ...core.DBExecutor) (Parent, error)
		QueryParents(ctx context.Context, exec ...core.DBExecutor) ([]Parent, error)
		UpdateParent(ctx context.Context, par Parent, exec ...core.DBExecutor) (Parent, error)
		DeleteParentsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) error
	}

	ServiceInterface interface {
		Create(np NewParent) (Parent, error)
		QueryAll() ([]Parent, error)
		GetByID(id string) (Parent, error)
		GetByUserID(userID string) (Parent, error)
		Update(id string, up UpdateParent) (Parent, error)
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

func (svc *service) Create(np NewParent) (Parent, error) {
	ctx := context.Background()

	email := deriveEmail(np.FirstName, np.LastName, svc.conf.EmailDomain)
	if err := svc.usrRepo.CheckEmailUniqueness(ctx, email, nil); err != nil {
		if errors.Cause(err) == user.ErrEmailExists {
			return Parent{}, core.NewConflictError("email", email)
		}
		return Parent{}, err
	}

	now := time.Now().UTC()
	usr := user.User{
		Email:     email,
		FirstName: np.FirstName,
		LastName:  np.LastName,
		Role:      user.RoleParent,
		CreatedAt: now,
		UpdatedAt: now,
	}
	usr.SetActive(true)
	pwd := initialPassword(np.LastName, np.Phone)
	if err := usr.SetPassword(pwd); err != nil {
		return Parent{}, errors.Wrap(err, "hashing password")
	}

	par, err := svc.repo.CreateWithUser(ctx, usr, Parent{
		Phone:     np.Phone,
		Address:   np.Address,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		// raced duplicate rejected by the store's unique constraint at commit
		if errors.Cause(err) == user.ErrEmailExists {
			return Parent{}, core.NewConflictError("email", email)
		}
		return Parent{}, err
	}

	sendWelcomeEmail(svc.mailSvc, par.User, pwd)
	return par, nil
}

func (svc *service) QueryAll() ([]Parent, error) {
	return svc.repo.QueryParents(context.Background())
}

func (svc *service) GetByID(id string) (Parent, error) {
	return svc.repo.GetParent(context.Background(), GetFilter{ID: id})
}

func (svc *service) GetByUserID(userID string) (Parent, error) {
	return svc.repo.GetParent(context.Background(), GetFilter{UserID: userID})
}

func (svc *service) Update(id string, up UpdateParent) (Parent, error) {
	return svc.repo.UpdateParent(context.Background(), Parent{
		ID:        id,
		Phone:     core.CleanString(up.Phone),
		Address:   core.CleanString(up.Address),
		UpdatedAt: time.Now().UTC(),
	})
}

func (svc *service) Delete(ids ...string) error {
	return svc.repo.DeleteParentsByID(context.Background(), ids)
}

// deriveEmail builds the login email from the parent's names.
func deriveEmail(firstName, lastName, domain string) string {
	first := strings.ToLower(strings.ReplaceAll(firstName, " ", ""))
	last := strings.ToLower(strings.ReplaceAll(lastName, " ", ""))
	return fmt.Sprintf("%s.%s@%s", first, last, domain)
}

// initialPassword derives the one-time password emailed to the new account.
func initialPassword(lastName, phone string) string {
	tail := phone
	if len(tail) > 4 {
		tail = tail[len(tail)-4:]
	}
	return fmt.Sprintf("%s.%s!Pp1", strings.ToLower(lastName), tail)
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
