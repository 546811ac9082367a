package game

// Winner returns the owner of the first complete line in Lines order.
func Winner(board Board) (Cell, bool) {
	for _, line := range Lines {
		a, b, c := board[line[0]], board[line[1]], board[line[2]]
		if a != Empty && a == b && b == c {
			return a, true
		}
	}
	return Empty, false
}

// IsBoardFull reports whether no empty cell remains.
func IsBoardFull(board Board) bool {
	for _, cell := range board {
		if cell == Empty {
			return false
		}
	}
	return true
}

// EmptyCells returns the indices of empty cells in ascending order.
func EmptyCells(board Board) []int {
	cells := make([]int, 0, BoardSize)
	for i, cell := range board {
		if cell == Empty {
			cells = append(cells, i)
		}
	}
	return cells
}

// Rows converts the board to three rows of three cells.
func (b Board) Rows() [][]Cell {
	rows := make([][]Cell, 3)
	for r := range [3]int{} {
		rows[r] = make([]Cell, 3)
		for c := range [3]int{} {
			rows[r][c] = b[r*3+c]
		}
	}
	return rows
}

// String renders the board as nine characters, '.' for empty cells.
func (b Board) String() string {
	out := make([]byte, BoardSize)
	for i, cell := range b {
		if cell == Empty {
			out[i] = '.'
		} else {
			out[i] = cell[0]
		}
	}
	return string(out)
}
