package block

import "errors"

var (
	ErrBlockNotFound  = errors.New("block not found")
	ErrDuplicateBlock = errors.New("block already exists for this unit, area, date and period")
	ErrInvalidPeriod  = errors.New("invalid block period")
)
