package infodtest

// match reports whether key matches the subscription pattern.
// '*' matches any run of bytes, every other byte matches itself.
func match(pattern, key string) bool {
	for len(pattern) > 0 {
		if pattern[0] == '*' {
			// collapse consecutive stars
			for len(pattern) > 0 && pattern[0] == '*' {
				pattern = pattern[1:]
			}
			if pattern == "" {
				return true
			}
			for i := 0; i <= len(key); i++ {
				if match(pattern, key[i:]) {
					return true
				}
			}
			return false
		}
		if key == "" || pattern[0] != key[0] {
			return false
		}
		pattern, key = pattern[1:], key[1:]
	}
	return key == ""
}
