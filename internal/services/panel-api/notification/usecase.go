package notification

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/NordCoder/netpanel/internal/domain/notification"
	"github.com/go-playground/validator/v10"
)

// ValidationError maps a request field to its first failed rule, worded for
// display next to the field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "invalid notification: " + strings.Join(keys, ", ")
}

type Usecase struct {
	repo     notification.Repo
	events   notification.EventSink
	tx       notification.Transactor
	clk      notification.Clock
	validate *validator.Validate
}

func NewUsecase(repo notification.Repo, events notification.EventSink, tx notification.Transactor, clk notification.Clock) *Usecase {
	if clk == nil {
		clk = notification.SystemClock{}
	}
	return &Usecase{
		repo:     repo,
		events:   events,
		tx:       tx,
		clk:      clk,
		validate: newValidator(),
	}
}

// List returns visible notifications; limit <= 0 returns all of them.
func (u *Usecase) List(ctx context.Context, limit int) ([]*notification.Notification, error) {
	return u.repo.ListVisible(ctx, limit)
}

func (u *Usecase) Get(ctx context.Context, id int64) (*notification.Notification, error) {
	return u.repo.GetByID(ctx, id)
}

// Transition applies action to notification id. Applying an action that is
// already in effect succeeds without writing or emitting anything.
func (u *Usecase) Transition(ctx context.Context, id int64, action string) (*notification.Notification, error) {
	a, err := notification.ParseAction(action)
	if err != nil {
		return nil, err
	}

	var out *notification.Notification
	err = u.tx.WithTx(ctx, func(ctx context.Context) error {
		changed := false
		n, err := u.repo.Modify(ctx, id, func(n *notification.Notification) bool {
			changed = a.Apply(n)
			return changed
		})
		if err != nil {
			return err
		}
		out = n
		if !changed {
			return nil
		}
		return u.emit(ctx, notification.EventUpdated, a, n)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (u *Usecase) Create(ctx context.Context, d notification.Draft) (*notification.Notification, error) {
	d.Title = strings.TrimSpace(d.Title)
	d.Body = strings.TrimSpace(d.Body)
	d.Source = strings.TrimSpace(d.Source)
	if err := u.validate.Struct(d); err != nil {
		return nil, toValidationError(err)
	}

	n := &notification.Notification{
		Title:     d.Title,
		Body:      d.Body,
		Source:    d.Source,
		Sticky:    d.Sticky,
		CreatedAt: u.clk.Now(),
	}
	err := u.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := u.repo.Create(ctx, n); err != nil {
			return fmt.Errorf("create notification: %w", err)
		}
		return u.emit(ctx, notification.EventCreated, "", n)
	})
	if err != nil {
		return nil, err
	}
	return n, nil
}

func (u *Usecase) Delete(ctx context.Context, id int64) error {
	return u.tx.WithTx(ctx, func(ctx context.Context) error {
		n, err := u.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := u.repo.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete notification %d: %w", id, err)
		}
		return u.emit(ctx, notification.EventDeleted, "", n)
	})
}

func (u *Usecase) emit(ctx context.Context, kind notification.EventKind, a notification.Action, n *notification.Notification) error {
	if u.events == nil {
		return nil
	}
	if err := u.events.Emit(ctx, notification.Event{Kind: kind, Action: a, Notification: *n, At: u.clk.Now()}); err != nil {
		return fmt.Errorf("emit %s event: %w", kind, err)
	}
	return nil
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func toValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		if _, seen := out.Fields[fe.Field()]; seen {
			continue
		}
		out.Fields[fe.Field()] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", fe.Field())
	case "max":
		return fmt.Sprintf("The %s may not be greater than %s characters.", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("The %s is invalid.", fe.Field())
	}
}
