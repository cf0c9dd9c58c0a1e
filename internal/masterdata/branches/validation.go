package branches

import (
	"fmt"
	"strings"

	"github.com/fueldesk/fueldesk/internal/platform/httpx"
)

func (s *Service) validate(branch Branch) error {
	if strings.TrimSpace(branch.Code) == "" {
		return fmt.Errorf("%w: branch code is required", httpx.ErrValidation)
	}
	if strings.TrimSpace(branch.Name) == "" {
		return fmt.Errorf("%w: branch name is required", httpx.ErrValidation)
	}
	return nil
}
