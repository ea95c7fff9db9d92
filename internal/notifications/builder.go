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
	"fmt"

	"github.com/whiskeyjimbo/DNSWatch/internal/rules"
)

func BuildChangeMessage(previous, current string) string {
	return fmt.Sprintf("address changed: %s -> %s", previous, current)
}

func BuildRuleMessage(rule rules.Rule, result rules.Result) string {
	if result.Error != nil {
		return fmt.Sprintf("rule evaluation failed: %v", result.Error)
	}
	return fmt.Sprintf("rule condition met: %s", rule.Name)
}

func GetRuleLevel(result rules.Result) NotificationLevel {
	if result.Error != nil {
		return ErrorLevel
	}
	return WarningLevel
}
