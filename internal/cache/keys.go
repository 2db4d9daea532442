package cache

import "fmt"

// Key scheme shared with other readers of this Redis instance.
const keyPrefix = "socialfi:"

func userKey(id int64) string      { return fmt.Sprintf("%suser:%d", keyPrefix, id) }
func postKey(id int64) string      { return fmt.Sprintf("%spost:%d", keyPrefix, id) }
func feedKey(id int64) string      { return fmt.Sprintf("%sfeed:%d", keyPrefix, id) }
func followingKey(id int64) string { return fmt.Sprintf("%suser:%d:following", keyPrefix, id) }
func followersKey(id int64) string { return fmt.Sprintf("%suser:%d:followers", keyPrefix, id) }
