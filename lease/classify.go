package lease

import "github.com/ceyewan/genesis/xerrors"

func isConditionFailed(err error) bool {
	return xerrors.Is(err, ErrConditionFailed)
}
