package repository

import "errors"

// ErrUnknownListFilter 未知的列表筛选条件
var ErrUnknownListFilter = errors.New("unknown promotion list filter")
