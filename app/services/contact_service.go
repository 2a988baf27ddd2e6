package services

import (
	"context"
	"fmt"

	"github.com/asadazo/asadazo/pkg/notification"
)

type ContactService struct {
	notifier *notification.Notifier
}

func NewContactService(notifier *notification.Notifier) *ContactService {
	return &ContactService{notifier: notifier}
}

// Send relays a website form to the operator inbox and waits for delivery.
func (s *ContactService) Send(ctx context.Context, form map[string]any) error {
	return s.notifier.Send(ctx, ContactMail{Subject: contactSubject(form), Fields: form})
}

func contactSubject(form map[string]any) string {
	for _, key := range []string{"subject", "cut"} {
		if v, ok := form[key]; ok && v != nil {
			if s := fmt.Sprint(v); s != "" {
				return s
			}
		}
	}
	return "Website message"
}
