package conda

import "go.trai.ch/coman/internal/core/domain"

// ParseSolveForTest exposes the dry-run output parser.
func ParseSolveForTest(p domain.Platform, stdout []byte, runErr error) ([]domain.LockedPackage, error) {
	return parseSolve(p, stdout, nil, runErr)
}

// ParseSearchForTest exposes the search output parser.
func ParseSearchForTest(stdout []byte) ([]domain.PackageInfo, error) {
	return parseSearch(stdout, nil, nil)
}

// ChannelNameForTest exposes channel URL reduction.
func ChannelNameForTest(ch string) string {
	return channelName(ch)
}
