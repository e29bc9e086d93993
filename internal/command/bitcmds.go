package command

import (
	"strconv"
	"strings"

	"github.com/edirooss/bradis/internal/resp"
	"github.com/edirooss/bradis/internal/store"
	"github.com/edirooss/bradis/internal/value"
)

func registerBitCommands() {
	register(&Spec{Name: "SETBIT", Arity: 4, Handler: cmdSetBit})
	register(&Spec{Name: "GETBIT", Arity: 3, Handler: cmdGetBit})
	register(&Spec{Name: "BITCOUNT", Arity: -2, Handler: cmdBitCount})
	register(&Spec{Name: "BITPOS", Arity: -3, Handler: cmdBitPos})
	register(&Spec{Name: "BITOP", Arity: -4, Handler: cmdBitOp})
	register(&Spec{Name: "BITFIELD", Arity: -2, Handler: cmdBitField})
	register(&Spec{Name: "BITFIELD_RO", Arity: -2, Handler: cmdBitFieldRO})
}

func cmdSetBit(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	key := string(args[1])
	offset, ok := parseInt(args[2])
	if !ok || offset < 0 {
		return resp.Err("ERR bit offset is not an integer or out of range")
	}
	bitStr := string(args[3])
	if bitStr != "0" && bitStr != "1" {
		return resp.Err("ERR bit is not an integer or out of range")
	}
	var bit byte
	if bitStr == "1" {
		bit = 1
	}
	return run(d, c, func(s *store.Store) *resp.Reply {
		existing, _ := s.Get(c.DBIndex, key)
		sv, werr := asString(existing)
		if werr != nil {
			return werr
		}
		var data []byte
		if sv != nil {
			data = append([]byte{}, sv.Bytes()...)
		}
		data, old := value.SetBit(data, offset, bit)
		s.PutKeepTTL(c.DBIndex, key, value.NewString(data))
		return resp.Int(int64(old))
	})
}

func cmdGetBit(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	key := string(args[1])
	offset, ok := parseInt(args[2])
	if !ok || offset < 0 {
		return resp.Err("ERR bit offset is not an integer or out of range")
	}
	return run(d, c, func(s *store.Store) *resp.Reply {
		existing, ok := s.Get(c.DBIndex, key)
		if !ok {
			return resp.Int(0)
		}
		sv, werr := asString(existing)
		if werr != nil {
			return werr
		}
		return resp.Int(int64(value.GetBit(sv.Bytes(), offset)))
	})
}

func cmdBitCount(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	key := string(args[1])
	hasRange := len(args) > 3
	start, end := int64(0), int64(-1)
	bitGranular := false
	if hasRange {
		s0, ok1 := parseInt(args[2])
		e0, ok2 := parseInt(args[3])
		if !ok1 || !ok2 {
			return errNotInt()
		}
		start, end = s0, e0
		if len(args) > 4 {
			switch strings.ToUpper(string(args[4])) {
			case "BIT":
				bitGranular = true
			case "BYTE":
			default:
				return errSyntax()
			}
		}
	}
	return run(d, c, func(s *store.Store) *resp.Reply {
		existing, ok := s.Get(c.DBIndex, key)
		if !ok {
			return resp.Int(0)
		}
		sv, werr := asString(existing)
		if werr != nil {
			return werr
		}
		data := sv.Bytes()
		if !hasRange {
			return resp.Int(value.BitCount(data, 0, len(data)-1))
		}
		if bitGranular {
			return resp.Int(value.BitCountBitRange(data, start, end))
		}
		n := len(data)
		s0, e0 := normalizeByteRange(int(start), int(end), n)
		return resp.Int(value.BitCount(data, s0, e0))
	})
}

func normalizeByteRange(start, end, n int) (int, int) {
	if start < 0 {
		start += n
	}
	if end < 0 {
		end += n
	}
	if start < 0 {
		start = 0
	}
	if end >= n {
		end = n - 1
	}
	return start, end
}

func cmdBitPos(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	key := string(args[1])
	targetArg, ok := parseInt(args[2])
	if !ok || (targetArg != 0 && targetArg != 1) {
		return resp.Err("ERR The bit argument must be 1 or 0.")
	}
	target := byte(targetArg)

	hasStart := len(args) > 3
	hasEnd := len(args) > 4
	var start, end int64
	bitGranular := false
	if hasStart {
		s0, ok := parseInt(args[3])
		if !ok {
			return errNotInt()
		}
		start = s0
	}
	if hasEnd {
		e0, ok := parseInt(args[4])
		if !ok {
			return errNotInt()
		}
		end = e0
	}
	if len(args) > 5 {
		switch strings.ToUpper(string(args[5])) {
		case "BIT":
			bitGranular = true
		case "BYTE":
		default:
			return errSyntax()
		}
	}

	return run(d, c, func(s *store.Store) *resp.Reply {
		existing, ok := s.Get(c.DBIndex, key)
		if !ok {
			if target == 0 {
				return resp.Int(0)
			}
			return resp.Int(-1)
		}
		sv, werr := asString(existing)
		if werr != nil {
			return werr
		}
		data := sv.Bytes()

		var startBit, endBit int64
		rightPadded := !hasEnd
		if bitGranular {
			startBit, endBit = start, end
			if !hasEnd {
				endBit = int64(len(data))*8 - 1
			}
		} else {
			sByte, eByte := start, end
			if !hasEnd {
				eByte = int64(len(data)) - 1
			} else {
				n := len(data)
				s0, e0 := normalizeByteRange(int(sByte), int(eByte), n)
				sByte, eByte = int64(s0), int64(e0)
			}
			startBit = sByte * 8
			endBit = eByte*8 + 7
		}
		return resp.Int(value.BitPos(data, target, startBit, endBit, rightPadded))
	})
}

func cmdBitOp(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	op := strings.ToUpper(string(args[1]))
	dest := string(args[2])
	srcKeys := args[3:]
	if op != "AND" && op != "OR" && op != "XOR" && op != "NOT" {
		return errSyntax()
	}
	if op == "NOT" && len(srcKeys) != 1 {
		return resp.Err("ERR BITOP NOT must be called with a single source key.")
	}
	return run(d, c, func(s *store.Store) *resp.Reply {
		sources := make([][]byte, len(srcKeys))
		for i, k := range srcKeys {
			existing, ok := s.Get(c.DBIndex, string(k))
			if !ok {
				continue
			}
			sv, werr := asString(existing)
			if werr != nil {
				return werr
			}
			sources[i] = sv.Bytes()
		}
		result := value.BitOp(op, sources)
		if len(result) == 0 {
			s.Del(c.DBIndex, []string{dest})
			return resp.Int(0)
		}
		s.Put(c.DBIndex, dest, value.NewString(result))
		return resp.Int(int64(len(result)))
	})
}

type bfOp struct {
	kind     string // GET, SET, INCRBY
	t        value.BitFieldType
	offset   int64
	val      int64
	overflow string
}

func parseBitOffset(s string, width int) (int64, bool) {
	if strings.HasPrefix(s, "#") {
		n, err := strconv.ParseInt(s[1:], 10, 64)
		if err != nil || n < 0 {
			return 0, false
		}
		return n * int64(width), true
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func bitFieldHelper(d *Deps, c *ClientState, args [][]byte, readOnly bool) *resp.Reply {
	key := string(args[1])
	var ops []bfOp
	overflow := "WRAP"
	i := 2
	for i < len(args) {
		opt := strings.ToUpper(string(args[i]))
		switch opt {
		case "OVERFLOW":
			if readOnly {
				return resp.Err("ERR BITFIELD_RO only supports the GET subcommand")
			}
			if i+1 >= len(args) {
				return errSyntax()
			}
			switch strings.ToUpper(string(args[i+1])) {
			case "WRAP", "SAT", "FAIL":
				overflow = strings.ToUpper(string(args[i+1]))
			default:
				return errSyntax()
			}
			i += 2
		case "GET":
			if i+2 >= len(args) {
				return errSyntax()
			}
			t, err := value.ParseBitFieldType(string(args[i+1]))
			if err != nil {
				return resp.Err(err.Error())
			}
			off, ok := parseBitOffset(string(args[i+2]), t.Width)
			if !ok {
				return resp.Err("ERR bit offset is not an integer or out of range")
			}
			ops = append(ops, bfOp{kind: "GET", t: t, offset: off})
			i += 3
		case "SET":
			if readOnly {
				return resp.Err("ERR BITFIELD_RO only supports the GET subcommand")
			}
			if i+3 >= len(args) {
				return errSyntax()
			}
			t, err := value.ParseBitFieldType(string(args[i+1]))
			if err != nil {
				return resp.Err(err.Error())
			}
			off, ok := parseBitOffset(string(args[i+2]), t.Width)
			if !ok {
				return resp.Err("ERR bit offset is not an integer or out of range")
			}
			val, ok := parseInt(args[i+3])
			if !ok {
				return errNotInt()
			}
			ops = append(ops, bfOp{kind: "SET", t: t, offset: off, val: val, overflow: overflow})
			i += 4
		case "INCRBY":
			if readOnly {
				return resp.Err("ERR BITFIELD_RO only supports the GET subcommand")
			}
			if i+3 >= len(args) {
				return errSyntax()
			}
			t, err := value.ParseBitFieldType(string(args[i+1]))
			if err != nil {
				return resp.Err(err.Error())
			}
			off, ok := parseBitOffset(string(args[i+2]), t.Width)
			if !ok {
				return resp.Err("ERR bit offset is not an integer or out of range")
			}
			val, ok := parseInt(args[i+3])
			if !ok {
				return errNotInt()
			}
			ops = append(ops, bfOp{kind: "INCRBY", t: t, offset: off, val: val, overflow: overflow})
			i += 4
		default:
			return errSyntax()
		}
	}

	return run(d, c, func(s *store.Store) *resp.Reply {
		existing, _ := s.Get(c.DBIndex, key)
		sv, werr := asString(existing)
		if werr != nil {
			return werr
		}
		var data []byte
		if sv != nil {
			data = append([]byte{}, sv.Bytes()...)
		}
		out := make([]*resp.Reply, len(ops))
		dirty := false
		for idx, op := range ops {
			switch op.kind {
			case "GET":
				out[idx] = resp.Int(value.BitFieldGet(data, op.offset, op.t))
			case "SET":
				newData, old, ok := value.BitFieldSet(data, op.offset, op.t, op.val, op.overflow)
				if !ok {
					out[idx] = resp.NullBulk()
					continue
				}
				data = newData
				dirty = true
				out[idx] = resp.Int(old)
			case "INCRBY":
				newData, sum, ok := value.BitFieldIncrBy(data, op.offset, op.t, op.val, op.overflow)
				if !ok {
					out[idx] = resp.NullBulk()
					continue
				}
				data = newData
				dirty = true
				out[idx] = resp.Int(sum)
			}
		}
		if dirty {
			s.PutKeepTTL(c.DBIndex, key, value.NewString(data))
		}
		return resp.ArrSlice(out)
	})
}

func cmdBitField(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	return bitFieldHelper(d, c, args, false)
}
func cmdBitFieldRO(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	return bitFieldHelper(d, c, args, true)
}
