// Copyright (C) 2025 Jeff Rose
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package notifications

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type NotificationType string

const (
	LogNotification NotificationType = "log"
)

type NotificationLevel string

const (
	InfoLevel    NotificationLevel = "info"
	WarningLevel NotificationLevel = "warning"
	ErrorLevel   NotificationLevel = "error"
)

// Notification is one reportable resolution event: an address change, a
// resolution failure, or a satisfied rule.
type Notification struct {
	Message string
	Level   NotificationLevel
	Domain  string
	Worker  int
	Count   int64
	RTT     time.Duration
	Rule    string
}

type Notifier interface {
	SendNotification(ctx context.Context, notification Notification) error
	Type() NotificationType
}

func NewNotifier(notifierType string, logger *zap.SugaredLogger) (Notifier, error) {
	switch NotificationType(notifierType) {
	case LogNotification:
		if logger == nil {
			return nil, errors.New("log notifier requires a logger")
		}
		return NewLogNotifier(logger), nil
	default:
		return nil, fmt.Errorf("unsupported notification type: %s", notifierType)
	}
}
