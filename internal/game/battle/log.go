package battle

// DefaultLogCapacity is the number of lines a Log keeps when none is configured.
const DefaultLogCapacity = 7

// Log is a bounded battle log. Once full, each new line evicts the oldest.
type Log struct {
	lines []string
	start int
	size  int
	total int
}

// NewLog creates a Log holding at most capacity lines.
//
// Postcondition: capacity < 1 selects DefaultLogCapacity.
func NewLog(capacity int) *Log {
	if capacity < 1 {
		capacity = DefaultLogCapacity
	}
	return &Log{lines: make([]string, capacity)}
}

// Append adds line, evicting the oldest line when the log is full.
func (l *Log) Append(line string) {
	l.total++
	if l.size < len(l.lines) {
		l.lines[(l.start+l.size)%len(l.lines)] = line
		l.size++
		return
	}
	l.lines[l.start] = line
	l.start = (l.start + 1) % len(l.lines)
}

// Lines returns the retained lines, oldest first.
//
// Postcondition: len(result) <= Capacity(); the result is a copy.
func (l *Log) Lines() []string {
	out := make([]string, l.size)
	for i := range l.size {
		out[i] = l.lines[(l.start+i)%len(l.lines)]
	}
	return out
}

// Len returns the number of retained lines.
func (l *Log) Len() int { return l.size }

// Capacity returns the maximum number of retained lines.
func (l *Log) Capacity() int { return len(l.lines) }

// Total returns the number of lines ever appended, including evicted ones.
func (l *Log) Total() int { return l.total }
