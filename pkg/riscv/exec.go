package riscv

import "github.com/go-rv32/rv32i/pkg/bits"

// GP is the register index (x3) the riscv-tests harness uses to carry the
// current test ID. A value greater than 1 observed at an ecall signals a
// failed test.
const GP = 3

// Executor holds the mutable state a run operates on: registers, memory,
// and the CSR bank. It has no other collaborators and no concurrency: a
// single goroutine must own it for its entire lifetime.
type Executor struct {
	Regs Registers
	Mem  *Memory
	csr  *csrFile
	cfg  Config
}

// NewExecutor constructs an Executor with memory sized and based per cfg.
func NewExecutor(cfg Config) *Executor {
	return &Executor{
		Mem: NewMemory(cfg.Base, cfg.MemSize),
		csr: newCSRFile(),
		cfg: cfg,
	}
}

// Step fetches the instruction at the current PC, decodes it, dispatches
// to the matching opcode-class handler, and updates PC. It returns nil to
// continue, ErrHalted (wrapped context aside) on a successful test-harness
// termination, or any other error as a fatal condition the driver must
// stop on.
func (e *Executor) Step() error {
	pc := e.Regs.PC()
	ins, err := e.Mem.Fetch32(pc)
	if err != nil {
		return err
	}
	d, ok := Decode(ins)
	if !ok {
		return &DecodeError{PC: pc, Instruction: ins, Opcode: d.Opcode}
	}
	return e.execute(pc, d)
}

// execute dispatches on opcode class and implements its semantics. On
// return, e.Regs.PC() holds the address of the next instruction to fetch
// (unless an error was returned).
func (e *Executor) execute(pc uint32, d Instruction) error {
	nextPC := pc + 4 // default: advance by 4; branches/jumps override below

	switch d.Opcode {
	case OpcodeLUI:
		e.Regs.Write(d.RD, uint32(d.Imm))

	case OpcodeAUIPC:
		e.Regs.Write(d.RD, pc+uint32(d.Imm))

	case OpcodeJAL:
		link := pc + 4
		if d.RD != 0 {
			e.Regs.Write(d.RD, link)
		}
		nextPC = pc + uint32(d.Imm)

	case OpcodeJALR:
		target := (e.Regs.Read(d.RS1) + uint32(d.Imm)) &^ 1
		link := pc + 4 // compute link before PC is overwritten
		e.Regs.Write(d.RD, link)
		nextPC = target

	case OpcodeBRANCH:
		taken, err := e.evalBranch(d)
		if err != nil {
			return err
		}
		if taken {
			nextPC = pc + uint32(d.Imm)
		}

	case OpcodeLOAD:
		if err := e.execLoad(d); err != nil {
			return err
		}

	case OpcodeSTORE:
		if err := e.execStore(d); err != nil {
			return err
		}

	case OpcodeOPIMM:
		if err := e.execOpImm(pc, d); err != nil {
			return err
		}

	case OpcodeOP:
		if err := e.execOp(pc, d); err != nil {
			return err
		}

	case OpcodeFENCE:
		// no-op

	case OpcodeSYSTEM:
		halt, err := e.execSystem(pc, d)
		if err != nil {
			return err
		}
		if halt {
			e.Regs.SetPC(nextPC)
			return ErrHalted
		}

	default:
		return &DecodeError{PC: pc, Instruction: d.Raw, Opcode: d.Opcode}
	}

	e.Regs.SetPC(nextPC)
	return nil
}

func (e *Executor) evalBranch(d Instruction) (bool, error) {
	a, b := e.Regs.Read(d.RS1), e.Regs.Read(d.RS2)
	switch d.Funct3 {
	case 0b000: // beq
		return a == b, nil
	case 0b001: // bne
		return a != b, nil
	case 0b100: // blt (signed)
		return int32(a) < int32(b), nil
	case 0b101: // bge (signed)
		return int32(a) >= int32(b), nil
	case 0b110: // bltu (unsigned)
		return a < b, nil
	case 0b111: // bgeu (unsigned)
		return a >= b, nil
	default:
		return false, &DecodeError{PC: e.Regs.PC(), Instruction: d.Raw, Opcode: d.Opcode}
	}
}

func (e *Executor) execLoad(d Instruction) error {
	addr := e.Regs.Read(d.RS1) + uint32(d.Imm)
	switch d.Funct3 {
	case 0b000: // lb
		raw, err := e.Mem.Read(addr, 1)
		if err != nil {
			return err
		}
		e.Regs.Write(d.RD, bits.SignExtend(uint32(raw[0]), 8))
	case 0b001: // lh
		raw, err := e.Mem.Read(addr, 2)
		if err != nil {
			return err
		}
		v := uint32(raw[0]) | uint32(raw[1])<<8
		e.Regs.Write(d.RD, bits.SignExtend(v, 16))
	case 0b010: // lw
		v, err := e.Mem.Fetch32(addr)
		if err != nil {
			return err
		}
		e.Regs.Write(d.RD, v)
	case 0b100: // lbu
		raw, err := e.Mem.Read(addr, 1)
		if err != nil {
			return err
		}
		e.Regs.Write(d.RD, uint32(raw[0]))
	case 0b101: // lhu
		raw, err := e.Mem.Read(addr, 2)
		if err != nil {
			return err
		}
		e.Regs.Write(d.RD, uint32(raw[0])|uint32(raw[1])<<8)
	default:
		return &DecodeError{PC: e.Regs.PC(), Instruction: d.Raw, Opcode: d.Opcode}
	}
	return nil
}

func (e *Executor) execStore(d Instruction) error {
	addr := e.Regs.Read(d.RS1) + uint32(d.Imm)
	val := e.Regs.Read(d.RS2)
	switch d.Funct3 {
	case 0b000: // sb
		return e.Mem.WriteByte(addr, uint8(val))
	case 0b001: // sh
		return e.Mem.WriteHalf(addr, uint16(val))
	case 0b010: // sw
		return e.Mem.WriteWord(addr, val)
	default:
		return &DecodeError{PC: e.Regs.PC(), Instruction: d.Raw, Opcode: d.Opcode}
	}
}

func (e *Executor) execOpImm(pc uint32, d Instruction) error {
	rs1 := e.Regs.Read(d.RS1)
	imm := uint32(d.Imm)
	switch d.Funct3 {
	case 0b000: // addi
		e.Regs.Write(d.RD, rs1+imm)
	case 0b010: // slti (signed)
		e.Regs.Write(d.RD, boolToReg(int32(rs1) < d.Imm))
	case 0b011: // sltiu (unsigned)
		e.Regs.Write(d.RD, boolToReg(rs1 < imm))
	case 0b100: // xori
		e.Regs.Write(d.RD, rs1^imm)
	case 0b110: // ori
		e.Regs.Write(d.RD, rs1|imm)
	case 0b111: // andi
		e.Regs.Write(d.RD, rs1&imm)
	case 0b001: // slli
		shamt := imm & bits.Mask(5)
		e.Regs.Write(d.RD, rs1<<shamt)
	case 0b101: // srli / srai
		shamt := imm & bits.Mask(5)
		if d.Funct7 == 0b0100000 {
			e.Regs.Write(d.RD, uint32(int32(rs1)>>shamt))
		} else {
			e.Regs.Write(d.RD, rs1>>shamt)
		}
	default:
		return &DecodeError{PC: pc, Instruction: d.Raw, Opcode: d.Opcode}
	}
	return nil
}

func (e *Executor) execOp(pc uint32, d Instruction) error {
	rs1, rs2 := e.Regs.Read(d.RS1), e.Regs.Read(d.RS2)
	switch d.Funct3 {
	case 0b000: // add / sub
		if d.Funct7 == 0b0100000 {
			e.Regs.Write(d.RD, rs1-rs2)
		} else if d.Funct7 == 0 {
			e.Regs.Write(d.RD, rs1+rs2)
		} else {
			return &DecodeError{PC: pc, Instruction: d.Raw, Opcode: d.Opcode}
		}
	case 0b001: // sll
		e.Regs.Write(d.RD, rs1<<(rs2&bits.Mask(5)))
	case 0b010: // slt (signed)
		e.Regs.Write(d.RD, boolToReg(int32(rs1) < int32(rs2)))
	case 0b011: // sltu (unsigned)
		e.Regs.Write(d.RD, boolToReg(rs1 < rs2))
	case 0b100: // xor
		e.Regs.Write(d.RD, rs1^rs2)
	case 0b101: // srl / sra
		shamt := rs2 & bits.Mask(5)
		if d.Funct7 == 0b0100000 {
			e.Regs.Write(d.RD, uint32(int32(rs1)>>shamt))
		} else if d.Funct7 == 0 {
			e.Regs.Write(d.RD, rs1>>shamt)
		} else {
			return &DecodeError{PC: pc, Instruction: d.Raw, Opcode: d.Opcode}
		}
	case 0b110: // or
		e.Regs.Write(d.RD, rs1|rs2)
	case 0b111: // and
		e.Regs.Write(d.RD, rs1&rs2)
	default:
		return &DecodeError{PC: pc, Instruction: d.Raw, Opcode: d.Opcode}
	}
	return nil
}

// execSystem implements the SYSTEM opcode: ECALL and the three CSR
// read/modify/write pairs (register and immediate forms). It returns
// halt=true when the instruction is the tohost CSR write that signals a
// successful harness run.
func (e *Executor) execSystem(pc uint32, d Instruction) (halt bool, err error) {
	csrAddr := bits.Slice(d.Raw, 31, 20)
	// The source operand is read before rd is written. Immediate forms
	// (funct3 bit 2 set) use the rs1 field itself as a 5-bit zimm.
	src := e.Regs.Read(d.RS1)
	if d.Funct3&0b100 != 0 {
		src = d.RS1
	}
	switch {
	case d.Funct3 == 0b000 && d.RD == 0:
		// ECALL: the harness failure convention.
		if gp := e.Regs.Read(GP); gp > 1 {
			return false, &HarnessFailureError{GP: gp, PC: pc}
		}
		return false, nil
	case d.Funct3 == 0b001 || d.Funct3 == 0b101: // CSRRW / CSRRWI
		if csrAddr == e.cfg.TohostCSR {
			return true, nil
		}
		prev := e.csr.read(csrAddr)
		e.csr.write(csrAddr, src)
		e.Regs.Write(d.RD, prev)
		return false, nil
	case d.Funct3 == 0b010 || d.Funct3 == 0b110: // CSRRS / CSRRSI
		prev := e.csr.read(csrAddr)
		e.Regs.Write(d.RD, prev)
		e.csr.write(csrAddr, prev|src)
		return false, nil
	case d.Funct3 == 0b011 || d.Funct3 == 0b111: // CSRRC / CSRRCI
		prev := e.csr.read(csrAddr)
		e.Regs.Write(d.RD, prev)
		e.csr.write(csrAddr, prev&^src)
		return false, nil
	default:
		return false, &DecodeError{PC: pc, Instruction: d.Raw, Opcode: d.Opcode}
	}
}

func boolToReg(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
