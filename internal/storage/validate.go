package storage

import "crate/internal/httpio"

// uploadsDirName is the reserved top-level name §3 forbids as a bucket.
const uploadsDirName = ".uploads"

// IsValidBucketName reports whether s is an acceptable bucket name per
// §8: 3-63 bytes, drawn from [a-z0-9.-], with an alphanumeric first and
// last byte. ".uploads" is additionally rejected as reserved.
func IsValidBucketName(s string) bool {
	if len(s) < httpio.MinBucketLength || len(s) > httpio.MaxBucketLength {
		return false
	}
	if s == uploadsDirName {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !isLowerAlnum(c) && c != '-' && c != '.' {
			return false
		}
	}
	return isLowerAlnum(s[0]) && isLowerAlnum(s[len(s)-1])
}

func isLowerAlnum(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}

// IsValidObjectKey reports whether k is an acceptable object key per §8:
// 1-1024 bytes, no byte below 0x20, no 0x7F (DEL).
func IsValidObjectKey(k string) bool {
	if len(k) < 1 || len(k) > httpio.MaxKeyLength {
		return false
	}
	for i := 0; i < len(k); i++ {
		c := k[i]
		if c < 0x20 || c == 0x7f {
			return false
		}
	}
	return true
}
