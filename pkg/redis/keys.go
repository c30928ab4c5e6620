package redis

import "fmt"

// SwitchKey returns the key holding the persisted adaptive switch state.
// Pattern: adaptive:switch:{name}
func SwitchKey(name string) string {
	return fmt.Sprintf("adaptive:switch:%s", name)
}
