package server

// Arity includes the command name itself; a negative value means
// "at least that many". Checked before any state access.
var commandArity = map[string]int{
	"PING":     -1,
	"INFO":     1,
	"FLUSHALL": 1,

	"SET": -3,
	"GET": 2,

	"DEL":    -2,
	"EXISTS": -2,
	"EXPIRE": 3,
	"TTL":    2,

	"LPUSH":  -3,
	"RPUSH":  -3,
	"LPOP":   2,
	"RPOP":   2,
	"LLEN":   2,
	"LRANGE": 4,

	"HSET":    -4,
	"HGET":    3,
	"HDEL":    -3,
	"HGETALL": 2,

	"SADD":     -3,
	"SREM":     -3,
	"SMEMBERS": 2,
	"SCARD":    2,

	"PUBLISH":     3,
	"SUBSCRIBE":   -2,
	"UNSUBSCRIBE": -2,
}

// checkArity validates argc (command name included) against the table
func checkArity(name string, argc int) bool {
	want, ok := commandArity[name]
	if !ok {
		return true
	}
	if want < 0 {
		return argc >= -want
	}
	return argc == want
}
