package accounts

import (
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	"github.com/goliatone/go-router/flash"
	"github.com/google/uuid"
)

// RegisterAccountRoutes mounts the signup, activation, and email change
// flows on the given router.
func RegisterAccountRoutes[T any](app router.Router[T], opts ...AccountControllerOption) {

	controller := NewAccountController(opts...)

	app.Get(controller.Routes.Signup, controller.SignupShow).
		SetName("signup.get")
	app.Post(controller.Routes.Signup, controller.SignupCreate).
		SetName("signup.post")

	app.Get(fmt.Sprintf("%s/:key", controller.Routes.Activate), controller.Activate).
		SetName("activate.get")

	app.Get(controller.Routes.EmailChange, controller.EmailChangeShow).
		SetName("email-change.get")
	app.Post(controller.Routes.EmailChange, controller.EmailChangeCreate).
		SetName("email-change.post")

	app.Get(fmt.Sprintf("%s/:key", controller.Routes.EmailConfirm), controller.EmailConfirm).
		SetName("email-confirm.get")
}

type AccountControllerRoutes struct {
	Signup       string
	Activate     string
	EmailChange  string
	EmailConfirm string
}

type AccountControllerViews struct {
	Signup        string
	SignupDone    string
	ActivateFail  string
	EmailChange   string
	EmailComplete string
}

type AccountController struct {
	Debug        bool
	Logger       Logger
	Repo         RepositoryManager
	Mail         *MailSender
	Permissions  PermissionChecker
	Config       Config
	Routes       *AccountControllerRoutes
	Views        *AccountControllerViews
	ErrorHandler router.ErrorHandler
}

type AccountControllerOption func(*AccountController) *AccountController

func NewAccountController(opts ...AccountControllerOption) *AccountController {
	c := &AccountController{
		Logger:       defLogger{},
		Config:       DefaultConfig(),
		ErrorHandler: defaultErrHandler,
		Routes: &AccountControllerRoutes{
			Signup:       "/accounts/signup",
			Activate:     "/accounts/activate",
			EmailChange:  "/accounts/email",
			EmailConfirm: "/accounts/confirm-email",
		},
		Views: &AccountControllerViews{
			Signup:        "accounts/signup",
			SignupDone:    "accounts/signup_complete",
			ActivateFail:  "accounts/activate_fail",
			EmailChange:   "accounts/email_form",
			EmailComplete: "accounts/email_complete",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in account controller...")
	}

	return c
}

// WithControllerRepo sets the repository manager.
func WithControllerRepo(repo RepositoryManager) AccountControllerOption {
	return func(c *AccountController) *AccountController {
		c.Repo = repo
		return c
	}
}

// WithControllerMail sets the mail sender.
func WithControllerMail(mail *MailSender) AccountControllerOption {
	return func(c *AccountController) *AccountController {
		c.Mail = mail
		return c
	}
}

// WithControllerConfig sets the module configuration.
func WithControllerConfig(cfg Config) AccountControllerOption {
	return func(c *AccountController) *AccountController {
		c.Config = cfg
		return c
	}
}

// WithControllerPermissions sets the permission collaborator.
func WithControllerPermissions(checker PermissionChecker) AccountControllerOption {
	return func(c *AccountController) *AccountController {
		c.Permissions = checker
		return c
	}
}

func (a *AccountController) SignupShow(ctx router.Context) error {
	return ctx.Render(a.Views.Signup, router.ViewContext{
		"errors": map[string]string{},
		"record": SignupPayload{},
	})
}

func (a *AccountController) SignupCreate(ctx router.Context) error {
	payload := new(SignupPayload)

	if err := ctx.Bind(payload); err != nil {
		errs := map[string]string{}
		errs["form"] = "Failed to parse form"
		a.Logger.Error("signup parse payload: ", "error", err)
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error parsing body",
		}).Status(fiber.StatusBadRequest).Render(a.Views.Signup, router.ViewContext{
			"errors": errs,
			"record": payload,
		})
	}

	if a.Debug {
		fmt.Println("======= ACCOUNT SIGNUP ======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("=============================")
	}

	var res *SignupResponse
	req := SignupMessage{
		Payload:   *payload,
		SendEmail: true,
		OnResponse: func(resp *SignupResponse) {
			res = resp
		},
	}

	signup := NewSignupHandler(a.Repo, a.Mail, a.Permissions, a.Config)
	if err := signup.Execute(ctx.Context(), req); err != nil {
		if res != nil && res.Resent {
			return ctx.Render(a.Views.SignupDone, router.ViewContext{
				"resent": true,
				"record": payload,
			})
		}

		a.Logger.Error("signup execute: ", "error", err)
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error validating payload",
		}).Render(a.Views.Signup, router.ViewContext{
			"record":     payload,
			"validation": FormatValidationErrorToMap(err),
		})
	}

	return flash.WithSuccess(ctx, router.ViewContext{
		"system_message": "Check your email to activate your account",
	}).Redirect("/", fiber.StatusSeeOther)
}

func (a *AccountController) Activate(ctx router.Context) error {
	key := ctx.Param("key", "")

	var res *ActivateAccountResponse
	input := ActivateAccountMessage{
		Key: key,
		OnResponse: func(resp *ActivateAccountResponse) {
			res = resp
		},
	}

	activate := NewActivateAccountHandler(a.Repo, a.Config)
	if err := activate.Execute(ctx.Context(), input); err != nil {
		a.Logger.Error("activation error: ", "error", err)
		return ctx.Render(a.Views.ActivateFail, router.ViewContext{
			"errors": map[string]string{"activation": err.Error()},
		})
	}

	if a.Debug {
		fmt.Println("======= ACCOUNT ACTIVATED ======")
		fmt.Println(print.MaybePrettyJSON(res))
		fmt.Println("================================")
	}

	return flash.WithSuccess(ctx, router.ViewContext{
		"system_message": "Your account has been activated",
	}).Redirect("/", fiber.StatusSeeOther)
}

// EmailChangePayload is the change-email form payload.
type EmailChangePayload struct {
	UserID string `form:"user_id" json:"user_id"`
	Email  string `form:"email" json:"email"`
}

func (a *AccountController) EmailChangeShow(ctx router.Context) error {
	return ctx.Render(a.Views.EmailChange, router.ViewContext{
		"errors": map[string]string{},
		"record": EmailChangePayload{},
	})
}

func (a *AccountController) EmailChangeCreate(ctx router.Context) error {
	payload := new(EmailChangePayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("email change parse payload: ", "error", err)
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error parsing body",
		}).Status(fiber.StatusBadRequest).Render(a.Views.EmailChange, router.ViewContext{
			"errors": map[string]string{"form": "Failed to parse form"},
			"record": payload,
		})
	}

	userID, err := uuid.Parse(payload.UserID)
	if err != nil {
		return flash.WithError(ctx, router.ViewContext{
			"error_message": ErrInvalidInput.Error(),
		}).Status(fiber.StatusBadRequest).Render(a.Views.EmailChange, router.ViewContext{
			"errors": map[string]string{"user_id": "invalid user"},
			"record": payload,
		})
	}

	req := RequestEmailChangeMessage{
		UserID:   userID,
		NewEmail: payload.Email,
	}

	change := NewRequestEmailChangeHandler(a.Repo, a.Mail)
	if err := change.Execute(ctx.Context(), req); err != nil {
		a.Logger.Error("email change execute: ", "error", err)
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error validating payload",
		}).Render(a.Views.EmailChange, router.ViewContext{
			"record":     payload,
			"validation": FormatValidationErrorToMap(err),
		})
	}

	return ctx.Render(a.Views.EmailComplete, router.ViewContext{
		"pending_email": payload.Email,
	})
}

func (a *AccountController) EmailConfirm(ctx router.Context) error {
	key := ctx.Param("key", "")

	input := ConfirmEmailChangeMessage{Key: key}

	confirm := NewConfirmEmailChangeHandler(a.Repo)
	if err := confirm.Execute(ctx.Context(), input); err != nil {
		a.Logger.Error("email confirm error: ", "error", err)
		return ctx.Render(a.Views.EmailComplete, router.ViewContext{
			"errors": map[string]string{"confirmation": err.Error()},
		})
	}

	return flash.WithSuccess(ctx, router.ViewContext{
		"system_message": "Your email address has been updated",
	}).Redirect("/", fiber.StatusSeeOther)
}

// FormatValidationErrorToMap flattens ozzo field errors and the package
// taxonomy into a field->message map for view rendering.
func FormatValidationErrorToMap(err error) map[string]string {
	out := map[string]string{}
	if err == nil {
		return out
	}

	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		for field, ferr := range fieldErrs {
			out[field] = ferr.Error()
		}
		return out
	}

	var rich *goerrors.Error
	if goerrors.As(err, &rich) && rich.TextCode != "" {
		out[rich.TextCode] = rich.Message
		return out
	}

	out["form"] = err.Error()
	return out
}

func defaultErrHandler(c router.Context, err error) error {
	return c.Render("errors/500", router.ViewContext{
		"message": err.Error(),
	})
}
