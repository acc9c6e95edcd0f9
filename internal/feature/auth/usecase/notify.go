package usecase

import (
	"context"
	"fmt"
)

// notify renders and sends an email in the background. Delivery is best
// effort: failures are logged and never reach the request that caused them.
// The send keeps ctx's values but not its cancellation.
func (u *authUsecase) notify(ctx context.Context, to, subject, template string, vars map[string]any) {
	if u.mailer == nil || u.renderer == nil {
		return
	}
	u.mail.Add(1)
	go func() {
		defer u.mail.Done()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), u.mailTimeout)
		defer cancel()

		body, err := u.renderer.Render(template, vars)
		if err != nil {
			u.logger.Error("email not rendered", "template", template, "error", err)
			return
		}
		if err := u.mailer.Send(ctx, to, subject, body); err != nil {
			u.logger.Error("email not sent", "template", template, "error", err)
			return
		}
		u.logger.Info("email sent", "template", template)
	}()
}

// Wait blocks until queued notifications have finished. Call it on shutdown.
func (u *authUsecase) Wait() {
	u.mail.Wait()
}

// WaitContext is Wait bounded by ctx. It returns ctx's error when mails are
// still in flight at the deadline.
func (u *authUsecase) WaitContext(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		u.mail.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("notification mails still in flight: %w", ctx.Err())
	}
}
