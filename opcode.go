// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2021-2024 The elementsproject developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"bytes"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"math"
	"strings"

	"golang.org/x/crypto/ripemd160"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/elementsproject/txscript/elwire"
)

// An opcode defines the information related to a txscript opcode.  opfunc, if
// present, is the function to call to perform the opcode on the script.  The
// current script is passed in as a slice with the first member being the opcode
// itself.
type opcode struct {
	value  byte
	name   string
	length int
	opfunc func(*opcode, []byte, *Engine) error
}

// These constants are the values of the official opcodes used on the btc wiki,
// in bitcoin core and in most if not all other references and software related
// to handling BTC scripts.
const (
	OP_0                   = 0x00 // 0
	OP_FALSE               = 0x00 // 0 - AKA OP_0
	OP_DATA_1              = 0x01 // 1
	OP_DATA_2              = 0x02 // 2
	OP_DATA_3              = 0x03 // 3
	OP_DATA_4              = 0x04 // 4
	OP_DATA_5              = 0x05 // 5
	OP_DATA_6              = 0x06 // 6
	OP_DATA_7              = 0x07 // 7
	OP_DATA_8              = 0x08 // 8
	OP_DATA_9              = 0x09 // 9
	OP_DATA_10             = 0x0a // 10
	OP_DATA_11             = 0x0b // 11
	OP_DATA_12             = 0x0c // 12
	OP_DATA_13             = 0x0d // 13
	OP_DATA_14             = 0x0e // 14
	OP_DATA_15             = 0x0f // 15
	OP_DATA_16             = 0x10 // 16
	OP_DATA_17             = 0x11 // 17
	OP_DATA_18             = 0x12 // 18
	OP_DATA_19             = 0x13 // 19
	OP_DATA_20             = 0x14 // 20
	OP_DATA_21             = 0x15 // 21
	OP_DATA_22             = 0x16 // 22
	OP_DATA_23             = 0x17 // 23
	OP_DATA_24             = 0x18 // 24
	OP_DATA_25             = 0x19 // 25
	OP_DATA_26             = 0x1a // 26
	OP_DATA_27             = 0x1b // 27
	OP_DATA_28             = 0x1c // 28
	OP_DATA_29             = 0x1d // 29
	OP_DATA_30             = 0x1e // 30
	OP_DATA_31             = 0x1f // 31
	OP_DATA_32             = 0x20 // 32
	OP_DATA_33             = 0x21 // 33
	OP_DATA_34             = 0x22 // 34
	OP_DATA_35             = 0x23 // 35
	OP_DATA_36             = 0x24 // 36
	OP_DATA_37             = 0x25 // 37
	OP_DATA_38             = 0x26 // 38
	OP_DATA_39             = 0x27 // 39
	OP_DATA_40             = 0x28 // 40
	OP_DATA_41             = 0x29 // 41
	OP_DATA_42             = 0x2a // 42
	OP_DATA_43             = 0x2b // 43
	OP_DATA_44             = 0x2c // 44
	OP_DATA_45             = 0x2d // 45
	OP_DATA_46             = 0x2e // 46
	OP_DATA_47             = 0x2f // 47
	OP_DATA_48             = 0x30 // 48
	OP_DATA_49             = 0x31 // 49
	OP_DATA_50             = 0x32 // 50
	OP_DATA_51             = 0x33 // 51
	OP_DATA_52             = 0x34 // 52
	OP_DATA_53             = 0x35 // 53
	OP_DATA_54             = 0x36 // 54
	OP_DATA_55             = 0x37 // 55
	OP_DATA_56             = 0x38 // 56
	OP_DATA_57             = 0x39 // 57
	OP_DATA_58             = 0x3a // 58
	OP_DATA_59             = 0x3b // 59
	OP_DATA_60             = 0x3c // 60
	OP_DATA_61             = 0x3d // 61
	OP_DATA_62             = 0x3e // 62
	OP_DATA_63             = 0x3f // 63
	OP_DATA_64             = 0x40 // 64
	OP_DATA_65             = 0x41 // 65
	OP_DATA_66             = 0x42 // 66
	OP_DATA_67             = 0x43 // 67
	OP_DATA_68             = 0x44 // 68
	OP_DATA_69             = 0x45 // 69
	OP_DATA_70             = 0x46 // 70
	OP_DATA_71             = 0x47 // 71
	OP_DATA_72             = 0x48 // 72
	OP_DATA_73             = 0x49 // 73
	OP_DATA_74             = 0x4a // 74
	OP_DATA_75             = 0x4b // 75
	OP_PUSHDATA1           = 0x4c // 76
	OP_PUSHDATA2           = 0x4d // 77
	OP_PUSHDATA4           = 0x4e // 78
	OP_1NEGATE             = 0x4f // 79
	OP_RESERVED            = 0x50 // 80
	OP_1                   = 0x51 // 81 - AKA OP_TRUE
	OP_TRUE                = 0x51 // 81
	OP_2                   = 0x52 // 82
	OP_3                   = 0x53 // 83
	OP_4                   = 0x54 // 84
	OP_5                   = 0x55 // 85
	OP_6                   = 0x56 // 86
	OP_7                   = 0x57 // 87
	OP_8                   = 0x58 // 88
	OP_9                   = 0x59 // 89
	OP_10                  = 0x5a // 90
	OP_11                  = 0x5b // 91
	OP_12                  = 0x5c // 92
	OP_13                  = 0x5d // 93
	OP_14                  = 0x5e // 94
	OP_15                  = 0x5f // 95
	OP_16                  = 0x60 // 96
	OP_NOP                 = 0x61 // 97
	OP_VER                 = 0x62 // 98
	OP_IF                  = 0x63 // 99
	OP_NOTIF               = 0x64 // 100
	OP_VERIF               = 0x65 // 101
	OP_VERNOTIF            = 0x66 // 102
	OP_ELSE                = 0x67 // 103
	OP_ENDIF               = 0x68 // 104
	OP_VERIFY              = 0x69 // 105
	OP_RETURN              = 0x6a // 106
	OP_TOALTSTACK          = 0x6b // 107
	OP_FROMALTSTACK        = 0x6c // 108
	OP_2DROP               = 0x6d // 109
	OP_2DUP                = 0x6e // 110
	OP_3DUP                = 0x6f // 111
	OP_2OVER               = 0x70 // 112
	OP_2ROT                = 0x71 // 113
	OP_2SWAP               = 0x72 // 114
	OP_IFDUP               = 0x73 // 115
	OP_DEPTH               = 0x74 // 116
	OP_DROP                = 0x75 // 117
	OP_DUP                 = 0x76 // 118
	OP_NIP                 = 0x77 // 119
	OP_OVER                = 0x78 // 120
	OP_PICK                = 0x79 // 121
	OP_ROLL                = 0x7a // 122
	OP_ROT                 = 0x7b // 123
	OP_SWAP                = 0x7c // 124
	OP_TUCK                = 0x7d // 125
	OP_CAT                 = 0x7e // 126
	OP_SUBSTR              = 0x7f // 127
	OP_LEFT                = 0x80 // 128
	OP_RIGHT               = 0x81 // 129
	OP_SIZE                = 0x82 // 130
	OP_INVERT              = 0x83 // 131
	OP_AND                 = 0x84 // 132
	OP_OR                  = 0x85 // 133
	OP_XOR                 = 0x86 // 134
	OP_EQUAL               = 0x87 // 135
	OP_EQUALVERIFY         = 0x88 // 136
	OP_RESERVED1           = 0x89 // 137
	OP_RESERVED2           = 0x8a // 138
	OP_1ADD                = 0x8b // 139
	OP_1SUB                = 0x8c // 140
	OP_2MUL                = 0x8d // 141
	OP_2DIV                = 0x8e // 142
	OP_NEGATE              = 0x8f // 143
	OP_ABS                 = 0x90 // 144
	OP_NOT                 = 0x91 // 145
	OP_0NOTEQUAL           = 0x92 // 146
	OP_ADD                 = 0x93 // 147
	OP_SUB                 = 0x94 // 148
	OP_MUL                 = 0x95 // 149
	OP_DIV                 = 0x96 // 150
	OP_MOD                 = 0x97 // 151
	OP_LSHIFT              = 0x98 // 152
	OP_RSHIFT              = 0x99 // 153
	OP_BOOLAND             = 0x9a // 154
	OP_BOOLOR              = 0x9b // 155
	OP_NUMEQUAL            = 0x9c // 156
	OP_NUMEQUALVERIFY      = 0x9d // 157
	OP_NUMNOTEQUAL         = 0x9e // 158
	OP_LESSTHAN            = 0x9f // 159
	OP_GREATERTHAN         = 0xa0 // 160
	OP_LESSTHANOREQUAL     = 0xa1 // 161
	OP_GREATERTHANOREQUAL  = 0xa2 // 162
	OP_MIN                 = 0xa3 // 163
	OP_MAX                 = 0xa4 // 164
	OP_WITHIN              = 0xa5 // 165
	OP_RIPEMD160           = 0xa6 // 166
	OP_SHA1                = 0xa7 // 167
	OP_SHA256              = 0xa8 // 168
	OP_HASH160             = 0xa9 // 169
	OP_HASH256             = 0xaa // 170
	OP_CODESEPARATOR       = 0xab // 171
	OP_CHECKSIG            = 0xac // 172
	OP_CHECKSIGVERIFY      = 0xad // 173
	OP_CHECKMULTISIG       = 0xae // 174
	OP_CHECKMULTISIGVERIFY = 0xaf // 175
	OP_NOP1                = 0xb0 // 176
	OP_NOP2                = 0xb1 // 177
	OP_CHECKLOCKTIMEVERIFY = 0xb1 // 177 - AKA OP_NOP2
	OP_NOP3                = 0xb2 // 178
	OP_CHECKSEQUENCEVERIFY = 0xb2 // 178 - AKA OP_NOP3
	OP_NOP4                = 0xb3 // 179
	OP_NOP5                = 0xb4 // 180
	OP_NOP6                = 0xb5 // 181
	OP_NOP7                = 0xb6 // 182
	OP_NOP8                = 0xb7 // 183
	OP_NOP9                = 0xb8 // 184
	OP_NOP10               = 0xb9 // 185
	OP_CHECKSIGADD         = 0xba // 186
	OP_UNKNOWN187          = 0xbb // 187
	OP_UNKNOWN188          = 0xbc // 188
	OP_UNKNOWN189          = 0xbd // 189
	OP_UNKNOWN190          = 0xbe // 190
	OP_UNKNOWN191          = 0xbf // 191

	OP_DETERMINISTICRANDOM       = 0xc0 // 192
	OP_CHECKSIGFROMSTACK         = 0xc1 // 193
	OP_CHECKSIGFROMSTACKVERIFY   = 0xc2 // 194
	OP_SUBSTR_LAZY               = 0xc3 // 195
	OP_SHA256INITIALIZE          = 0xc4 // 196
	OP_SHA256UPDATE              = 0xc5 // 197
	OP_SHA256FINALIZE            = 0xc6 // 198
	OP_INSPECTINPUTOUTPOINT      = 0xc7 // 199
	OP_INSPECTINPUTASSET         = 0xc8 // 200
	OP_INSPECTINPUTVALUE         = 0xc9 // 201
	OP_INSPECTINPUTSCRIPTPUBKEY  = 0xca // 202
	OP_INSPECTINPUTSEQUENCE      = 0xcb // 203
	OP_INSPECTINPUTISSUANCE      = 0xcc // 204
	OP_PUSHCURRENTINPUTINDEX     = 0xcd // 205
	OP_INSPECTOUTPUTASSET        = 0xce // 206
	OP_INSPECTOUTPUTVALUE        = 0xcf // 207
	OP_INSPECTOUTPUTNONCE        = 0xd0 // 208
	OP_INSPECTOUTPUTSCRIPTPUBKEY = 0xd1 // 209
	OP_INSPECTVERSION            = 0xd2 // 210
	OP_INSPECTLOCKTIME           = 0xd3 // 211
	OP_INSPECTNUMINPUTS          = 0xd4 // 212
	OP_INSPECTNUMOUTPUTS         = 0xd5 // 213
	OP_TXWEIGHT                  = 0xd6 // 214
	OP_ADD64                     = 0xd7 // 215
	OP_SUB64                     = 0xd8 // 216
	OP_MUL64                     = 0xd9 // 217
	OP_DIV64                     = 0xda // 218
	OP_NEG64                     = 0xdb // 219
	OP_LESSTHAN64                = 0xdc // 220
	OP_LESSTHANOREQUAL64         = 0xdd // 221
	OP_GREATERTHAN64             = 0xde // 222
	OP_GREATERTHANOREQUAL64      = 0xdf // 223
	OP_SCRIPTNUMTOLE64           = 0xe0 // 224
	OP_LE64TOSCRIPTNUM           = 0xe1 // 225
	OP_LE32TOLE64                = 0xe2 // 226
	OP_ECMULSCALARVERIFY         = 0xe3 // 227
	OP_TWEAKVERIFY               = 0xe4 // 228

	OP_UNKNOWN229    = 0xe5 // 229
	OP_UNKNOWN230    = 0xe6 // 230
	OP_UNKNOWN231    = 0xe7 // 231
	OP_UNKNOWN232    = 0xe8 // 232
	OP_UNKNOWN233    = 0xe9 // 233
	OP_UNKNOWN234    = 0xea // 234
	OP_UNKNOWN235    = 0xeb // 235
	OP_UNKNOWN236    = 0xec // 236
	OP_UNKNOWN237    = 0xed // 237
	OP_UNKNOWN238    = 0xee // 238
	OP_UNKNOWN239    = 0xef // 239
	OP_UNKNOWN240    = 0xf0 // 240
	OP_UNKNOWN241    = 0xf1 // 241
	OP_UNKNOWN242    = 0xf2 // 242
	OP_UNKNOWN243    = 0xf3 // 243
	OP_UNKNOWN244    = 0xf4 // 244
	OP_UNKNOWN245    = 0xf5 // 245
	OP_UNKNOWN246    = 0xf6 // 246
	OP_UNKNOWN247    = 0xf7 // 247
	OP_UNKNOWN248    = 0xf8 // 248
	OP_UNKNOWN249    = 0xf9 // 249
	OP_SMALLINTEGER  = 0xfa // 250 - bitcoin core internal
	OP_PUBKEYS       = 0xfb // 251 - bitcoin core internal
	OP_UNKNOWN252    = 0xfc // 252
	OP_PUBKEYHASH    = 0xfd // 253 - bitcoin core internal
	OP_PUBKEY        = 0xfe // 254 - bitcoin core internal
	OP_INVALIDOPCODE = 0xff // 255 - bitcoin core internal
)

// Conditional execution constants.
const (
	OpCondFalse = 0
	OpCondTrue  = 1
	OpCondSkip  = 2
)

// opcodeArray holds details about all possible opcodes such as how many bytes
// the opcode and any associated data should take, its human-readable name, and
// the handler function.
var opcodeArray = [256]opcode{
	// Data push opcodes.
	OP_FALSE:     {OP_FALSE, "OP_0", 1, opcodeFalse},
	OP_DATA_1:    {OP_DATA_1, "OP_DATA_1", 2, opcodePushData},
	OP_DATA_2:    {OP_DATA_2, "OP_DATA_2", 3, opcodePushData},
	OP_DATA_3:    {OP_DATA_3, "OP_DATA_3", 4, opcodePushData},
	OP_DATA_4:    {OP_DATA_4, "OP_DATA_4", 5, opcodePushData},
	OP_DATA_5:    {OP_DATA_5, "OP_DATA_5", 6, opcodePushData},
	OP_DATA_6:    {OP_DATA_6, "OP_DATA_6", 7, opcodePushData},
	OP_DATA_7:    {OP_DATA_7, "OP_DATA_7", 8, opcodePushData},
	OP_DATA_8:    {OP_DATA_8, "OP_DATA_8", 9, opcodePushData},
	OP_DATA_9:    {OP_DATA_9, "OP_DATA_9", 10, opcodePushData},
	OP_DATA_10:   {OP_DATA_10, "OP_DATA_10", 11, opcodePushData},
	OP_DATA_11:   {OP_DATA_11, "OP_DATA_11", 12, opcodePushData},
	OP_DATA_12:   {OP_DATA_12, "OP_DATA_12", 13, opcodePushData},
	OP_DATA_13:   {OP_DATA_13, "OP_DATA_13", 14, opcodePushData},
	OP_DATA_14:   {OP_DATA_14, "OP_DATA_14", 15, opcodePushData},
	OP_DATA_15:   {OP_DATA_15, "OP_DATA_15", 16, opcodePushData},
	OP_DATA_16:   {OP_DATA_16, "OP_DATA_16", 17, opcodePushData},
	OP_DATA_17:   {OP_DATA_17, "OP_DATA_17", 18, opcodePushData},
	OP_DATA_18:   {OP_DATA_18, "OP_DATA_18", 19, opcodePushData},
	OP_DATA_19:   {OP_DATA_19, "OP_DATA_19", 20, opcodePushData},
	OP_DATA_20:   {OP_DATA_20, "OP_DATA_20", 21, opcodePushData},
	OP_DATA_21:   {OP_DATA_21, "OP_DATA_21", 22, opcodePushData},
	OP_DATA_22:   {OP_DATA_22, "OP_DATA_22", 23, opcodePushData},
	OP_DATA_23:   {OP_DATA_23, "OP_DATA_23", 24, opcodePushData},
	OP_DATA_24:   {OP_DATA_24, "OP_DATA_24", 25, opcodePushData},
	OP_DATA_25:   {OP_DATA_25, "OP_DATA_25", 26, opcodePushData},
	OP_DATA_26:   {OP_DATA_26, "OP_DATA_26", 27, opcodePushData},
	OP_DATA_27:   {OP_DATA_27, "OP_DATA_27", 28, opcodePushData},
	OP_DATA_28:   {OP_DATA_28, "OP_DATA_28", 29, opcodePushData},
	OP_DATA_29:   {OP_DATA_29, "OP_DATA_29", 30, opcodePushData},
	OP_DATA_30:   {OP_DATA_30, "OP_DATA_30", 31, opcodePushData},
	OP_DATA_31:   {OP_DATA_31, "OP_DATA_31", 32, opcodePushData},
	OP_DATA_32:   {OP_DATA_32, "OP_DATA_32", 33, opcodePushData},
	OP_DATA_33:   {OP_DATA_33, "OP_DATA_33", 34, opcodePushData},
	OP_DATA_34:   {OP_DATA_34, "OP_DATA_34", 35, opcodePushData},
	OP_DATA_35:   {OP_DATA_35, "OP_DATA_35", 36, opcodePushData},
	OP_DATA_36:   {OP_DATA_36, "OP_DATA_36", 37, opcodePushData},
	OP_DATA_37:   {OP_DATA_37, "OP_DATA_37", 38, opcodePushData},
	OP_DATA_38:   {OP_DATA_38, "OP_DATA_38", 39, opcodePushData},
	OP_DATA_39:   {OP_DATA_39, "OP_DATA_39", 40, opcodePushData},
	OP_DATA_40:   {OP_DATA_40, "OP_DATA_40", 41, opcodePushData},
	OP_DATA_41:   {OP_DATA_41, "OP_DATA_41", 42, opcodePushData},
	OP_DATA_42:   {OP_DATA_42, "OP_DATA_42", 43, opcodePushData},
	OP_DATA_43:   {OP_DATA_43, "OP_DATA_43", 44, opcodePushData},
	OP_DATA_44:   {OP_DATA_44, "OP_DATA_44", 45, opcodePushData},
	OP_DATA_45:   {OP_DATA_45, "OP_DATA_45", 46, opcodePushData},
	OP_DATA_46:   {OP_DATA_46, "OP_DATA_46", 47, opcodePushData},
	OP_DATA_47:   {OP_DATA_47, "OP_DATA_47", 48, opcodePushData},
	OP_DATA_48:   {OP_DATA_48, "OP_DATA_48", 49, opcodePushData},
	OP_DATA_49:   {OP_DATA_49, "OP_DATA_49", 50, opcodePushData},
	OP_DATA_50:   {OP_DATA_50, "OP_DATA_50", 51, opcodePushData},
	OP_DATA_51:   {OP_DATA_51, "OP_DATA_51", 52, opcodePushData},
	OP_DATA_52:   {OP_DATA_52, "OP_DATA_52", 53, opcodePushData},
	OP_DATA_53:   {OP_DATA_53, "OP_DATA_53", 54, opcodePushData},
	OP_DATA_54:   {OP_DATA_54, "OP_DATA_54", 55, opcodePushData},
	OP_DATA_55:   {OP_DATA_55, "OP_DATA_55", 56, opcodePushData},
	OP_DATA_56:   {OP_DATA_56, "OP_DATA_56", 57, opcodePushData},
	OP_DATA_57:   {OP_DATA_57, "OP_DATA_57", 58, opcodePushData},
	OP_DATA_58:   {OP_DATA_58, "OP_DATA_58", 59, opcodePushData},
	OP_DATA_59:   {OP_DATA_59, "OP_DATA_59", 60, opcodePushData},
	OP_DATA_60:   {OP_DATA_60, "OP_DATA_60", 61, opcodePushData},
	OP_DATA_61:   {OP_DATA_61, "OP_DATA_61", 62, opcodePushData},
	OP_DATA_62:   {OP_DATA_62, "OP_DATA_62", 63, opcodePushData},
	OP_DATA_63:   {OP_DATA_63, "OP_DATA_63", 64, opcodePushData},
	OP_DATA_64:   {OP_DATA_64, "OP_DATA_64", 65, opcodePushData},
	OP_DATA_65:   {OP_DATA_65, "OP_DATA_65", 66, opcodePushData},
	OP_DATA_66:   {OP_DATA_66, "OP_DATA_66", 67, opcodePushData},
	OP_DATA_67:   {OP_DATA_67, "OP_DATA_67", 68, opcodePushData},
	OP_DATA_68:   {OP_DATA_68, "OP_DATA_68", 69, opcodePushData},
	OP_DATA_69:   {OP_DATA_69, "OP_DATA_69", 70, opcodePushData},
	OP_DATA_70:   {OP_DATA_70, "OP_DATA_70", 71, opcodePushData},
	OP_DATA_71:   {OP_DATA_71, "OP_DATA_71", 72, opcodePushData},
	OP_DATA_72:   {OP_DATA_72, "OP_DATA_72", 73, opcodePushData},
	OP_DATA_73:   {OP_DATA_73, "OP_DATA_73", 74, opcodePushData},
	OP_DATA_74:   {OP_DATA_74, "OP_DATA_74", 75, opcodePushData},
	OP_DATA_75:   {OP_DATA_75, "OP_DATA_75", 76, opcodePushData},
	OP_PUSHDATA1: {OP_PUSHDATA1, "OP_PUSHDATA1", -1, opcodePushData},
	OP_PUSHDATA2: {OP_PUSHDATA2, "OP_PUSHDATA2", -2, opcodePushData},
	OP_PUSHDATA4: {OP_PUSHDATA4, "OP_PUSHDATA4", -4, opcodePushData},
	OP_1NEGATE:   {OP_1NEGATE, "OP_1NEGATE", 1, opcode1Negate},
	OP_RESERVED:  {OP_RESERVED, "OP_RESERVED", 1, opcodeReserved},
	OP_TRUE:      {OP_TRUE, "OP_1", 1, opcodeN},
	OP_2:         {OP_2, "OP_2", 1, opcodeN},
	OP_3:         {OP_3, "OP_3", 1, opcodeN},
	OP_4:         {OP_4, "OP_4", 1, opcodeN},
	OP_5:         {OP_5, "OP_5", 1, opcodeN},
	OP_6:         {OP_6, "OP_6", 1, opcodeN},
	OP_7:         {OP_7, "OP_7", 1, opcodeN},
	OP_8:         {OP_8, "OP_8", 1, opcodeN},
	OP_9:         {OP_9, "OP_9", 1, opcodeN},
	OP_10:        {OP_10, "OP_10", 1, opcodeN},
	OP_11:        {OP_11, "OP_11", 1, opcodeN},
	OP_12:        {OP_12, "OP_12", 1, opcodeN},
	OP_13:        {OP_13, "OP_13", 1, opcodeN},
	OP_14:        {OP_14, "OP_14", 1, opcodeN},
	OP_15:        {OP_15, "OP_15", 1, opcodeN},
	OP_16:        {OP_16, "OP_16", 1, opcodeN},

	// Control opcodes.
	OP_NOP:                 {OP_NOP, "OP_NOP", 1, opcodeNop},
	OP_VER:                 {OP_VER, "OP_VER", 1, opcodeReserved},
	OP_IF:                  {OP_IF, "OP_IF", 1, opcodeIf},
	OP_NOTIF:               {OP_NOTIF, "OP_NOTIF", 1, opcodeNotIf},
	OP_VERIF:               {OP_VERIF, "OP_VERIF", 1, opcodeReserved},
	OP_VERNOTIF:            {OP_VERNOTIF, "OP_VERNOTIF", 1, opcodeReserved},
	OP_ELSE:                {OP_ELSE, "OP_ELSE", 1, opcodeElse},
	OP_ENDIF:               {OP_ENDIF, "OP_ENDIF", 1, opcodeEndif},
	OP_VERIFY:              {OP_VERIFY, "OP_VERIFY", 1, opcodeVerify},
	OP_RETURN:              {OP_RETURN, "OP_RETURN", 1, opcodeReturn},
	OP_CHECKLOCKTIMEVERIFY: {OP_CHECKLOCKTIMEVERIFY, "OP_CHECKLOCKTIMEVERIFY", 1, opcodeCheckLockTimeVerify},
	OP_CHECKSEQUENCEVERIFY: {OP_CHECKSEQUENCEVERIFY, "OP_CHECKSEQUENCEVERIFY", 1, opcodeCheckSequenceVerify},

	// Stack opcodes.
	OP_TOALTSTACK:   {OP_TOALTSTACK, "OP_TOALTSTACK", 1, opcodeToAltStack},
	OP_FROMALTSTACK: {OP_FROMALTSTACK, "OP_FROMALTSTACK", 1, opcodeFromAltStack},
	OP_2DROP:        {OP_2DROP, "OP_2DROP", 1, opcode2Drop},
	OP_2DUP:         {OP_2DUP, "OP_2DUP", 1, opcode2Dup},
	OP_3DUP:         {OP_3DUP, "OP_3DUP", 1, opcode3Dup},
	OP_2OVER:        {OP_2OVER, "OP_2OVER", 1, opcode2Over},
	OP_2ROT:         {OP_2ROT, "OP_2ROT", 1, opcode2Rot},
	OP_2SWAP:        {OP_2SWAP, "OP_2SWAP", 1, opcode2Swap},
	OP_IFDUP:        {OP_IFDUP, "OP_IFDUP", 1, opcodeIfDup},
	OP_DEPTH:        {OP_DEPTH, "OP_DEPTH", 1, opcodeDepth},
	OP_DROP:         {OP_DROP, "OP_DROP", 1, opcodeDrop},
	OP_DUP:          {OP_DUP, "OP_DUP", 1, opcodeDup},
	OP_NIP:          {OP_NIP, "OP_NIP", 1, opcodeNip},
	OP_OVER:         {OP_OVER, "OP_OVER", 1, opcodeOver},
	OP_PICK:         {OP_PICK, "OP_PICK", 1, opcodePick},
	OP_ROLL:         {OP_ROLL, "OP_ROLL", 1, opcodeRoll},
	OP_ROT:          {OP_ROT, "OP_ROT", 1, opcodeRot},
	OP_SWAP:         {OP_SWAP, "OP_SWAP", 1, opcodeSwap},
	OP_TUCK:         {OP_TUCK, "OP_TUCK", 1, opcodeTuck},

	// Splice opcodes.
	OP_CAT:    {OP_CAT, "OP_CAT", 1, opcodeCat},
	OP_SUBSTR: {OP_SUBSTR, "OP_SUBSTR", 1, opcodeSubstr},
	OP_LEFT:   {OP_LEFT, "OP_LEFT", 1, opcodeLeft},
	OP_RIGHT:  {OP_RIGHT, "OP_RIGHT", 1, opcodeRight},
	OP_SIZE:   {OP_SIZE, "OP_SIZE", 1, opcodeSize},

	// Bitwise logic opcodes.
	OP_INVERT:      {OP_INVERT, "OP_INVERT", 1, opcodeInvert},
	OP_AND:         {OP_AND, "OP_AND", 1, opcodeAnd},
	OP_OR:          {OP_OR, "OP_OR", 1, opcodeOr},
	OP_XOR:         {OP_XOR, "OP_XOR", 1, opcodeXor},
	OP_EQUAL:       {OP_EQUAL, "OP_EQUAL", 1, opcodeEqual},
	OP_EQUALVERIFY: {OP_EQUALVERIFY, "OP_EQUALVERIFY", 1, opcodeEqualVerify},
	OP_RESERVED1:   {OP_RESERVED1, "OP_RESERVED1", 1, opcodeReserved},
	OP_RESERVED2:   {OP_RESERVED2, "OP_RESERVED2", 1, opcodeReserved},

	// Numeric related opcodes.
	OP_1ADD:               {OP_1ADD, "OP_1ADD", 1, opcode1Add},
	OP_1SUB:               {OP_1SUB, "OP_1SUB", 1, opcode1Sub},
	OP_2MUL:               {OP_2MUL, "OP_2MUL", 1, opcodeDisabled},
	OP_2DIV:               {OP_2DIV, "OP_2DIV", 1, opcodeDisabled},
	OP_NEGATE:             {OP_NEGATE, "OP_NEGATE", 1, opcodeNegate},
	OP_ABS:                {OP_ABS, "OP_ABS", 1, opcodeAbs},
	OP_NOT:                {OP_NOT, "OP_NOT", 1, opcodeNot},
	OP_0NOTEQUAL:          {OP_0NOTEQUAL, "OP_0NOTEQUAL", 1, opcode0NotEqual},
	OP_ADD:                {OP_ADD, "OP_ADD", 1, opcodeAdd},
	OP_SUB:                {OP_SUB, "OP_SUB", 1, opcodeSub},
	OP_MUL:                {OP_MUL, "OP_MUL", 1, opcodeDisabled},
	OP_DIV:                {OP_DIV, "OP_DIV", 1, opcodeDisabled},
	OP_MOD:                {OP_MOD, "OP_MOD", 1, opcodeDisabled},
	OP_LSHIFT:             {OP_LSHIFT, "OP_LSHIFT", 1, opcodeLShift},
	OP_RSHIFT:             {OP_RSHIFT, "OP_RSHIFT", 1, opcodeRShift},
	OP_BOOLAND:            {OP_BOOLAND, "OP_BOOLAND", 1, opcodeBoolAnd},
	OP_BOOLOR:             {OP_BOOLOR, "OP_BOOLOR", 1, opcodeBoolOr},
	OP_NUMEQUAL:           {OP_NUMEQUAL, "OP_NUMEQUAL", 1, opcodeNumEqual},
	OP_NUMEQUALVERIFY:     {OP_NUMEQUALVERIFY, "OP_NUMEQUALVERIFY", 1, opcodeNumEqualVerify},
	OP_NUMNOTEQUAL:        {OP_NUMNOTEQUAL, "OP_NUMNOTEQUAL", 1, opcodeNumNotEqual},
	OP_LESSTHAN:           {OP_LESSTHAN, "OP_LESSTHAN", 1, opcodeLessThan},
	OP_GREATERTHAN:        {OP_GREATERTHAN, "OP_GREATERTHAN", 1, opcodeGreaterThan},
	OP_LESSTHANOREQUAL:    {OP_LESSTHANOREQUAL, "OP_LESSTHANOREQUAL", 1, opcodeLessThanOrEqual},
	OP_GREATERTHANOREQUAL: {OP_GREATERTHANOREQUAL, "OP_GREATERTHANOREQUAL", 1, opcodeGreaterThanOrEqual},
	OP_MIN:                {OP_MIN, "OP_MIN", 1, opcodeMin},
	OP_MAX:                {OP_MAX, "OP_MAX", 1, opcodeMax},
	OP_WITHIN:             {OP_WITHIN, "OP_WITHIN", 1, opcodeWithin},

	// Crypto opcodes.
	OP_RIPEMD160:           {OP_RIPEMD160, "OP_RIPEMD160", 1, opcodeRipemd160},
	OP_SHA1:                {OP_SHA1, "OP_SHA1", 1, opcodeSha1},
	OP_SHA256:              {OP_SHA256, "OP_SHA256", 1, opcodeSha256},
	OP_HASH160:             {OP_HASH160, "OP_HASH160", 1, opcodeHash160},
	OP_HASH256:             {OP_HASH256, "OP_HASH256", 1, opcodeHash256},
	OP_CODESEPARATOR:       {OP_CODESEPARATOR, "OP_CODESEPARATOR", 1, opcodeCodeSeparator},
	OP_CHECKSIG:            {OP_CHECKSIG, "OP_CHECKSIG", 1, opcodeCheckSig},
	OP_CHECKSIGVERIFY:      {OP_CHECKSIGVERIFY, "OP_CHECKSIGVERIFY", 1, opcodeCheckSigVerify},
	OP_CHECKMULTISIG:       {OP_CHECKMULTISIG, "OP_CHECKMULTISIG", 1, opcodeCheckMultiSig},
	OP_CHECKMULTISIGVERIFY: {OP_CHECKMULTISIGVERIFY, "OP_CHECKMULTISIGVERIFY", 1, opcodeCheckMultiSigVerify},
	OP_CHECKSIGADD:         {OP_CHECKSIGADD, "OP_CHECKSIGADD", 1, opcodeCheckSigAdd},

	// Reserved opcodes.
	OP_NOP1:  {OP_NOP1, "OP_NOP1", 1, opcodeNop},
	OP_NOP4:  {OP_NOP4, "OP_NOP4", 1, opcodeNop},
	OP_NOP5:  {OP_NOP5, "OP_NOP5", 1, opcodeNop},
	OP_NOP6:  {OP_NOP6, "OP_NOP6", 1, opcodeNop},
	OP_NOP7:  {OP_NOP7, "OP_NOP7", 1, opcodeNop},
	OP_NOP8:  {OP_NOP8, "OP_NOP8", 1, opcodeNop},
	OP_NOP9:  {OP_NOP9, "OP_NOP9", 1, opcodeNop},
	OP_NOP10: {OP_NOP10, "OP_NOP10", 1, opcodeNop},

	// Undefined opcodes.
	OP_UNKNOWN187: {OP_UNKNOWN187, "OP_UNKNOWN187", 1, opcodeInvalid},
	OP_UNKNOWN188: {OP_UNKNOWN188, "OP_UNKNOWN188", 1, opcodeInvalid},
	OP_UNKNOWN189: {OP_UNKNOWN189, "OP_UNKNOWN189", 1, opcodeInvalid},
	OP_UNKNOWN190: {OP_UNKNOWN190, "OP_UNKNOWN190", 1, opcodeInvalid},
	OP_UNKNOWN191: {OP_UNKNOWN191, "OP_UNKNOWN191", 1, opcodeInvalid},

	// Streaming hash, introspection, 64-bit arithmetic, and crypto
	// extension opcodes.
	OP_DETERMINISTICRANDOM:       {OP_DETERMINISTICRANDOM, "OP_DETERMINISTICRANDOM", 1, opcodeDeterministicRandom},
	OP_CHECKSIGFROMSTACK:         {OP_CHECKSIGFROMSTACK, "OP_CHECKSIGFROMSTACK", 1, opcodeCheckSigFromStack},
	OP_CHECKSIGFROMSTACKVERIFY:   {OP_CHECKSIGFROMSTACKVERIFY, "OP_CHECKSIGFROMSTACKVERIFY", 1, opcodeCheckSigFromStackVerify},
	OP_SUBSTR_LAZY:               {OP_SUBSTR_LAZY, "OP_SUBSTR_LAZY", 1, opcodeSubstrLazy},
	OP_SHA256INITIALIZE:          {OP_SHA256INITIALIZE, "OP_SHA256INITIALIZE", 1, opcodeSha256Initialize},
	OP_SHA256UPDATE:              {OP_SHA256UPDATE, "OP_SHA256UPDATE", 1, opcodeSha256Update},
	OP_SHA256FINALIZE:            {OP_SHA256FINALIZE, "OP_SHA256FINALIZE", 1, opcodeSha256Finalize},
	OP_INSPECTINPUTOUTPOINT:      {OP_INSPECTINPUTOUTPOINT, "OP_INSPECTINPUTOUTPOINT", 1, opcodeInspectInputOutPoint},
	OP_INSPECTINPUTASSET:         {OP_INSPECTINPUTASSET, "OP_INSPECTINPUTASSET", 1, opcodeInspectInputAsset},
	OP_INSPECTINPUTVALUE:         {OP_INSPECTINPUTVALUE, "OP_INSPECTINPUTVALUE", 1, opcodeInspectInputValue},
	OP_INSPECTINPUTSCRIPTPUBKEY:  {OP_INSPECTINPUTSCRIPTPUBKEY, "OP_INSPECTINPUTSCRIPTPUBKEY", 1, opcodeInspectInputScriptPubKey},
	OP_INSPECTINPUTSEQUENCE:      {OP_INSPECTINPUTSEQUENCE, "OP_INSPECTINPUTSEQUENCE", 1, opcodeInspectInputSequence},
	OP_INSPECTINPUTISSUANCE:      {OP_INSPECTINPUTISSUANCE, "OP_INSPECTINPUTISSUANCE", 1, opcodeInspectInputIssuance},
	OP_PUSHCURRENTINPUTINDEX:     {OP_PUSHCURRENTINPUTINDEX, "OP_PUSHCURRENTINPUTINDEX", 1, opcodePushCurrentInputIndex},
	OP_INSPECTOUTPUTASSET:        {OP_INSPECTOUTPUTASSET, "OP_INSPECTOUTPUTASSET", 1, opcodeInspectOutputAsset},
	OP_INSPECTOUTPUTVALUE:        {OP_INSPECTOUTPUTVALUE, "OP_INSPECTOUTPUTVALUE", 1, opcodeInspectOutputValue},
	OP_INSPECTOUTPUTNONCE:        {OP_INSPECTOUTPUTNONCE, "OP_INSPECTOUTPUTNONCE", 1, opcodeInspectOutputNonce},
	OP_INSPECTOUTPUTSCRIPTPUBKEY: {OP_INSPECTOUTPUTSCRIPTPUBKEY, "OP_INSPECTOUTPUTSCRIPTPUBKEY", 1, opcodeInspectOutputScriptPubKey},
	OP_INSPECTVERSION:            {OP_INSPECTVERSION, "OP_INSPECTVERSION", 1, opcodeInspectVersion},
	OP_INSPECTLOCKTIME:           {OP_INSPECTLOCKTIME, "OP_INSPECTLOCKTIME", 1, opcodeInspectLockTime},
	OP_INSPECTNUMINPUTS:          {OP_INSPECTNUMINPUTS, "OP_INSPECTNUMINPUTS", 1, opcodeInspectNumInputs},
	OP_INSPECTNUMOUTPUTS:         {OP_INSPECTNUMOUTPUTS, "OP_INSPECTNUMOUTPUTS", 1, opcodeInspectNumOutputs},
	OP_TXWEIGHT:                  {OP_TXWEIGHT, "OP_TXWEIGHT", 1, opcodeTxWeight},
	OP_ADD64:                     {OP_ADD64, "OP_ADD64", 1, opcodeAdd64},
	OP_SUB64:                     {OP_SUB64, "OP_SUB64", 1, opcodeSub64},
	OP_MUL64:                     {OP_MUL64, "OP_MUL64", 1, opcodeMul64},
	OP_DIV64:                     {OP_DIV64, "OP_DIV64", 1, opcodeDiv64},
	OP_NEG64:                     {OP_NEG64, "OP_NEG64", 1, opcodeNeg64},
	OP_LESSTHAN64:                {OP_LESSTHAN64, "OP_LESSTHAN64", 1, opcodeLessThan64},
	OP_LESSTHANOREQUAL64:         {OP_LESSTHANOREQUAL64, "OP_LESSTHANOREQUAL64", 1, opcodeLessThanOrEqual64},
	OP_GREATERTHAN64:             {OP_GREATERTHAN64, "OP_GREATERTHAN64", 1, opcodeGreaterThan64},
	OP_GREATERTHANOREQUAL64:      {OP_GREATERTHANOREQUAL64, "OP_GREATERTHANOREQUAL64", 1, opcodeGreaterThanOrEqual64},
	OP_SCRIPTNUMTOLE64:           {OP_SCRIPTNUMTOLE64, "OP_SCRIPTNUMTOLE64", 1, opcodeScriptNumToLE64},
	OP_LE64TOSCRIPTNUM:           {OP_LE64TOSCRIPTNUM, "OP_LE64TOSCRIPTNUM", 1, opcodeLE64ToScriptNum},
	OP_LE32TOLE64:                {OP_LE32TOLE64, "OP_LE32TOLE64", 1, opcodeLE32ToLE64},
	OP_ECMULSCALARVERIFY:         {OP_ECMULSCALARVERIFY, "OP_ECMULSCALARVERIFY", 1, opcodeEcMulScalarVerify},
	OP_TWEAKVERIFY:               {OP_TWEAKVERIFY, "OP_TWEAKVERIFY", 1, opcodeTweakVerify},

	OP_UNKNOWN229: {OP_UNKNOWN229, "OP_UNKNOWN229", 1, opcodeInvalid},
	OP_UNKNOWN230: {OP_UNKNOWN230, "OP_UNKNOWN230", 1, opcodeInvalid},
	OP_UNKNOWN231: {OP_UNKNOWN231, "OP_UNKNOWN231", 1, opcodeInvalid},
	OP_UNKNOWN232: {OP_UNKNOWN232, "OP_UNKNOWN232", 1, opcodeInvalid},
	OP_UNKNOWN233: {OP_UNKNOWN233, "OP_UNKNOWN233", 1, opcodeInvalid},
	OP_UNKNOWN234: {OP_UNKNOWN234, "OP_UNKNOWN234", 1, opcodeInvalid},
	OP_UNKNOWN235: {OP_UNKNOWN235, "OP_UNKNOWN235", 1, opcodeInvalid},
	OP_UNKNOWN236: {OP_UNKNOWN236, "OP_UNKNOWN236", 1, opcodeInvalid},
	OP_UNKNOWN237: {OP_UNKNOWN237, "OP_UNKNOWN237", 1, opcodeInvalid},
	OP_UNKNOWN238: {OP_UNKNOWN238, "OP_UNKNOWN238", 1, opcodeInvalid},
	OP_UNKNOWN239: {OP_UNKNOWN239, "OP_UNKNOWN239", 1, opcodeInvalid},
	OP_UNKNOWN240: {OP_UNKNOWN240, "OP_UNKNOWN240", 1, opcodeInvalid},
	OP_UNKNOWN241: {OP_UNKNOWN241, "OP_UNKNOWN241", 1, opcodeInvalid},
	OP_UNKNOWN242: {OP_UNKNOWN242, "OP_UNKNOWN242", 1, opcodeInvalid},
	OP_UNKNOWN243: {OP_UNKNOWN243, "OP_UNKNOWN243", 1, opcodeInvalid},
	OP_UNKNOWN244: {OP_UNKNOWN244, "OP_UNKNOWN244", 1, opcodeInvalid},
	OP_UNKNOWN245: {OP_UNKNOWN245, "OP_UNKNOWN245", 1, opcodeInvalid},
	OP_UNKNOWN246: {OP_UNKNOWN246, "OP_UNKNOWN246", 1, opcodeInvalid},
	OP_UNKNOWN247: {OP_UNKNOWN247, "OP_UNKNOWN247", 1, opcodeInvalid},
	OP_UNKNOWN248: {OP_UNKNOWN248, "OP_UNKNOWN248", 1, opcodeInvalid},
	OP_UNKNOWN249: {OP_UNKNOWN249, "OP_UNKNOWN249", 1, opcodeInvalid},

	// Bitcoin Core internal use opcode.  Defined here for completeness.
	OP_SMALLINTEGER: {OP_SMALLINTEGER, "OP_SMALLINTEGER", 1, opcodeInvalid},
	OP_PUBKEYS:      {OP_PUBKEYS, "OP_PUBKEYS", 1, opcodeInvalid},
	OP_UNKNOWN252:   {OP_UNKNOWN252, "OP_UNKNOWN252", 1, opcodeInvalid},
	OP_PUBKEYHASH:   {OP_PUBKEYHASH, "OP_PUBKEYHASH", 1, opcodeInvalid},
	OP_PUBKEY:       {OP_PUBKEY, "OP_PUBKEY", 1, opcodeInvalid},

	OP_INVALIDOPCODE: {OP_INVALIDOPCODE, "OP_INVALIDOPCODE", 1, opcodeInvalid},
}

// opcodeOnelineRepls defines opcode names which are replaced when doing a
// one-line disassembly.  This is done to match the output of the reference
// implementation while not changing the opcode names in the nicer full
// disassembly.
var opcodeOnelineRepls = map[string]string{
	"OP_1NEGATE": "-1",
	"OP_0":       "0",
	"OP_1":       "1",
	"OP_2":       "2",
	"OP_3":       "3",
	"OP_4":       "4",
	"OP_5":       "5",
	"OP_6":       "6",
	"OP_7":       "7",
	"OP_8":       "8",
	"OP_9":       "9",
	"OP_10":      "10",
	"OP_11":      "11",
	"OP_12":      "12",
	"OP_13":      "13",
	"OP_14":      "14",
	"OP_15":      "15",
	"OP_16":      "16",
}

// successOpcodes tracks the set of op codes that are to be interpreted as op
// codes that cause execution to automatically succeed. This map is used to
// quickly look up the op codes during script pre-processing.
var successOpcodes = map[byte]struct{}{
	OP_RESERVED:     {}, // 80
	OP_VER:          {}, // 98
	OP_RESERVED1:    {}, // 137
	OP_RESERVED2:    {}, // 138
	OP_2MUL:         {}, // 141
	OP_2DIV:         {}, // 142
	OP_MUL:          {}, // 149
	OP_DIV:          {}, // 150
	OP_MOD:          {}, // 151
	OP_UNKNOWN187:   {}, // 187
	OP_UNKNOWN188:   {}, // 188
	OP_UNKNOWN189:   {}, // 189
	OP_UNKNOWN190:   {}, // 190
	OP_UNKNOWN191:   {}, // 191
	OP_UNKNOWN229:   {}, // 229
	OP_UNKNOWN230:   {}, // 230
	OP_UNKNOWN231:   {}, // 231
	OP_UNKNOWN232:   {}, // 232
	OP_UNKNOWN233:   {}, // 233
	OP_UNKNOWN234:   {}, // 234
	OP_UNKNOWN235:   {}, // 235
	OP_UNKNOWN236:   {}, // 236
	OP_UNKNOWN237:   {}, // 237
	OP_UNKNOWN238:   {}, // 238
	OP_UNKNOWN239:   {}, // 239
	OP_UNKNOWN240:   {}, // 240
	OP_UNKNOWN241:   {}, // 241
	OP_UNKNOWN242:   {}, // 242
	OP_UNKNOWN243:   {}, // 243
	OP_UNKNOWN244:   {}, // 244
	OP_UNKNOWN245:   {}, // 245
	OP_UNKNOWN246:   {}, // 246
	OP_UNKNOWN247:   {}, // 247
	OP_UNKNOWN248:   {}, // 248
	OP_UNKNOWN249:   {}, // 249
	OP_SMALLINTEGER: {}, // 250
	OP_PUBKEYS:      {}, // 251
	OP_UNKNOWN252:   {}, // 252
	OP_PUBKEYHASH:   {}, // 253
	OP_PUBKEY:       {}, // 254
}

// disasmOpcode writes a human-readable disassembly of the provided opcode and
// data into the provided buffer.  The compact flag indicates the disassembly
// should print a more compact representation of data-carrying and small integer
// opcodes.  For example, OP_0 through OP_16 are replaced with the numeric value
// and data pushes are printed as only the hex representation of the data as
// opposed to including the opcode that specifies the amount of data to push as
// well.
func disasmOpcode(buf *strings.Builder, op *opcode, data []byte, compact bool) {
	// Replace opcode which represent values (e.g. OP_0 through OP_16 and
	// OP_1NEGATE) with the raw value when performing a compact disassembly.
	opcodeName := op.name
	if compact {
		if replName, ok := opcodeOnelineRepls[opcodeName]; ok {
			opcodeName = replName
		}

		// Either write the human-readable opcode or the parsed data in hex for
		// data-carrying opcodes.
		switch {
		case op.length == 1:
			buf.WriteString(opcodeName)

		default:
			buf.WriteString(hex.EncodeToString(data))
		}

		return
	}

	buf.WriteString(opcodeName)

	switch op.length {
	// Only write the opcode name for non-data push opcodes.
	case 1:
		return

	// Add length for the OP_PUSHDATA# opcodes.
	case -1:
		buf.WriteString(fmt.Sprintf(" 0x%02x", len(data)))
	case -2:
		buf.WriteString(fmt.Sprintf(" 0x%04x", len(data)))
	case -4:
		buf.WriteString(fmt.Sprintf(" 0x%08x", len(data)))
	}

	buf.WriteString(fmt.Sprintf(" 0x%02x", data))
}

// *******************************************
// Opcode implementation functions start here.
// *******************************************

// opcodeDisabled is a common handler for disabled opcodes.  It returns an
// appropriate error indicating the opcode is disabled.  While it would
// ordinarily make more sense to detect if the script contains any disabled
// opcodes before executing in an initial parse step, the consensus rules
// dictate the script doesn't fail until the program counter passes over a
// disabled opcode (even when they appear in a branch that is not executed).
func opcodeDisabled(op *opcode, data []byte, vm *Engine) error {
	str := fmt.Sprintf("attempt to execute disabled opcode %s", op.name)
	return scriptError(ErrDisabledOpcode, str)
}

// opcodeReserved is a common handler for all reserved opcodes.  It returns an
// appropriate error indicating the opcode is reserved.
func opcodeReserved(op *opcode, data []byte, vm *Engine) error {
	str := fmt.Sprintf("attempt to execute reserved opcode %s", op.name)
	return scriptError(ErrReservedOpcode, str)
}

// opcodeInvalid is a common handler for all invalid opcodes.  It returns an
// appropriate error indicating the opcode is invalid.
func opcodeInvalid(op *opcode, data []byte, vm *Engine) error {
	str := fmt.Sprintf("attempt to execute invalid opcode %s", op.name)
	return scriptError(ErrReservedOpcode, str)
}

// opcodeFalse pushes an empty array to the data stack to represent false.  Note
// that 0, when encoded as a number according to the numeric encoding consensus
// rules, is an empty array.
func opcodeFalse(op *opcode, data []byte, vm *Engine) error {
	vm.dstack.PushByteArray(nil)
	return nil
}

// opcodePushData is a common handler for the vast majority of opcodes that push
// raw data (bytes) to the data stack.
func opcodePushData(op *opcode, data []byte, vm *Engine) error {
	vm.dstack.PushByteArray(data)
	return nil
}

// opcode1Negate pushes -1, encoded as a number, to the data stack.
func opcode1Negate(op *opcode, data []byte, vm *Engine) error {
	vm.dstack.PushInt(scriptNum(-1))
	return nil
}

// opcodeN is a common handler for the small integer data push opcodes.  It
// pushes the numeric value the opcode represents (which will be from 1 to 16)
// onto the data stack.
func opcodeN(op *opcode, data []byte, vm *Engine) error {
	// The opcodes are all defined consecutively, so the numeric value is
	// the difference.
	vm.dstack.PushInt(scriptNum((op.value - (OP_1 - 1))))
	return nil
}

// opcodeNop is a common handler for the NOP family of opcodes.  As the name
// implies it generally does nothing, however, it will return an error when
// the flag to discourage use of NOPs is set for select opcodes.
func opcodeNop(op *opcode, data []byte, vm *Engine) error {
	switch op.value {
	case OP_NOP1, OP_NOP4, OP_NOP5,
		OP_NOP6, OP_NOP7, OP_NOP8, OP_NOP9, OP_NOP10:

		if vm.hasFlag(ScriptDiscourageUpgradableNops) {
			str := fmt.Sprintf("%v reserved for soft-fork "+
				"upgrades", op.name)
			return scriptError(ErrDiscourageUpgradableNOPs, str)
		}
	}
	return nil
}

// popIfBool enforces the "minimal if" policy during script execution if the
// particular flag is set.  If so, in order to eliminate an additional source
// of nuisance malleability, post-segwit for version 0 witness programs, we now
// require the following: for OP_IF and OP_NOT_IF, the top stack item MUST
// either be an empty byte slice, or [0x01]. Otherwise, the item at the top of
// the stack will be popped and interpreted as a boolean.
func popIfBool(vm *Engine) (bool, error) {
	// When not in witness execution mode, not executing a v0 witness
	// program, or not doing tapscript execution, or the minimal if flag
	// isn't set pop the top stack item as a normal bool.
	switch {
	// Minimal if is always on for taproot execution.
	case vm.isWitnessVersionActive(TaprootWitnessVersion):
		break

	// If this isn't the base segwit version, then we'll coerce the stack
	// element as a bool as normal.
	case !vm.isWitnessVersionActive(BaseSegwitWitnessVersion):
		fallthrough

	// If the minimal if flag isn't set, then we don't need any extra
	// checks here.
	case !vm.hasFlag(ScriptVerifyMinimalIf):
		return vm.dstack.PopBool()
	}

	// At this point, a v0 or v1 witness program is being executed and the
	// minimal if flag is set, so enforce additional constraints on the top
	// stack item.
	so, err := vm.dstack.PopByteArray()
	if err != nil {
		return false, err
	}

	// The top element MUST have a length of at least one.
	if len(so) > 1 {
		str := fmt.Sprintf("minimal if is active, top element MUST "+
			"have a length of at least, instead length is %v",
			len(so))
		return false, scriptError(ErrMinimalIf, str)
	}

	// Additionally, if the length is one, then the value MUST be 0x01.
	if len(so) == 1 && so[0] != 0x01 {
		str := fmt.Sprintf("minimal if is active, top stack item MUST "+
			"be an empty byte array or 0x01, is instead: %v",
			so[0])
		return false, scriptError(ErrMinimalIf, str)
	}

	return asBool(so), nil
}

// opcodeIf treats the top item on the data stack as a boolean and removes it.
//
// An appropriate entry is added to the conditional stack depending on whether
// the boolean is true and whether this if is on an executing branch in order
// to allow proper execution of further opcodes depending on the conditional
// logic.  When the boolean is true, the first branch will be executed (unless
// this opcode is nested in a non-executed branch).
//
// <expression> if [statements] [else [statements]] endif
//
// Note that, unlike for all non-conditional opcodes, this is executed even when
// it is on a non-executing branch so proper nesting is maintained.
//
// Data stack transformation: [... bool] -> [...]
// Conditional stack transformation: [...] -> [... OpCondValue]
func opcodeIf(op *opcode, data []byte, vm *Engine) error {
	condVal := OpCondFalse
	if vm.isBranchExecuting() {
		ok, err := popIfBool(vm)
		if err != nil {
			return err
		}

		if ok {
			condVal = OpCondTrue
		}
	} else {
		condVal = OpCondSkip
	}
	vm.condStack = append(vm.condStack, condVal)
	return nil
}

// opcodeNotIf treats the top item on the data stack as a boolean and removes
// it.
//
// An appropriate entry is added to the conditional stack depending on whether
// the boolean is true and whether this if is on an executing branch in order
// to allow proper execution of further opcodes depending on the conditional
// logic.  When the boolean is false, the first branch will be executed (unless
// this opcode is nested in a non-executed branch).
//
// <expression> notif [statements] [else [statements]] endif
//
// Note that, unlike for all non-conditional opcodes, this is executed even when
// it is on a non-executing branch so proper nesting is maintained.
//
// Data stack transformation: [... bool] -> [...]
// Conditional stack transformation: [...] -> [... OpCondValue]
func opcodeNotIf(op *opcode, data []byte, vm *Engine) error {
	condVal := OpCondFalse
	if vm.isBranchExecuting() {
		ok, err := popIfBool(vm)
		if err != nil {
			return err
		}

		if !ok {
			condVal = OpCondTrue
		}
	} else {
		condVal = OpCondSkip
	}
	vm.condStack = append(vm.condStack, condVal)
	return nil
}

// opcodeElse inverts conditional execution for other half of if/else/endif.
//
// An error is returned if there has not already been a matching OP_IF.
//
// Conditional stack transformation: [... OpCondValue] -> [... !OpCondValue]
func opcodeElse(op *opcode, data []byte, vm *Engine) error {
	if len(vm.condStack) == 0 {
		str := fmt.Sprintf("encountered opcode %s with no matching "+
			"opcode to begin conditional execution", op.name)
		return scriptError(ErrUnbalancedConditional, str)
	}

	conditionalIdx := len(vm.condStack) - 1
	switch vm.condStack[conditionalIdx] {
	case OpCondTrue:
		vm.condStack[conditionalIdx] = OpCondFalse
	case OpCondFalse:
		vm.condStack[conditionalIdx] = OpCondTrue
	case OpCondSkip:
		// Value doesn't change in skip since it indicates this opcode
		// is nested in a non-executed branch.
	}
	return nil
}

// opcodeEndif terminates a conditional block, removing the value from the
// conditional execution stack.
//
// An error is returned if there has not already been a matching OP_IF.
//
// Conditional stack transformation: [... OpCondValue] -> [...]
func opcodeEndif(op *opcode, data []byte, vm *Engine) error {
	if len(vm.condStack) == 0 {
		str := fmt.Sprintf("encountered opcode %s with no matching "+
			"opcode to begin conditional execution", op.name)
		return scriptError(ErrUnbalancedConditional, str)
	}

	vm.condStack = vm.condStack[:len(vm.condStack)-1]
	return nil
}

// abstractVerify examines the top item on the data stack as a boolean value and
// verifies it evaluates to true.  An error is returned either when there is no
// item on the stack or when that item evaluates to false.  In the latter case
// where the verification fails specifically due to the top item evaluating
// to false, the returned error will use the passed error code.
func abstractVerify(op *opcode, vm *Engine, c ErrorCode) error {
	verified, err := vm.dstack.PopBool()
	if err != nil {
		return err
	}

	if !verified {
		str := fmt.Sprintf("%s failed", op.name)
		return scriptError(c, str)
	}
	return nil
}

// opcodeVerify examines the top item on the data stack as a boolean value and
// verifies it evaluates to true.  An error is returned if it does not.
func opcodeVerify(op *opcode, data []byte, vm *Engine) error {
	return abstractVerify(op, vm, ErrVerify)
}

// opcodeReturn returns an appropriate error since it is always an error to
// return early from a script.
func opcodeReturn(op *opcode, data []byte, vm *Engine) error {
	return scriptError(ErrEarlyReturn, "script returned early")
}

// verifyLockTime is a helper function used to validate locktimes.
func verifyLockTime(txLockTime, threshold, lockTime int64) error {
	// The lockTimes in both the script and transaction must be of the same
	// type.
	if !((txLockTime < threshold && lockTime < threshold) ||
		(txLockTime >= threshold && lockTime >= threshold)) {
		str := fmt.Sprintf("mismatched locktime types -- tx locktime "+
			"%d, stack locktime %d", txLockTime, lockTime)
		return scriptError(ErrUnsatisfiedLockTime, str)
	}

	if lockTime > txLockTime {
		str := fmt.Sprintf("locktime requirement not satisfied -- "+
			"locktime is greater than the transaction locktime: "+
			"%d > %d", lockTime, txLockTime)
		return scriptError(ErrUnsatisfiedLockTime, str)
	}

	return nil
}

// opcodeCheckLockTimeVerify compares the top item on the data stack to the
// LockTime field of the transaction containing the script signature
// validating if the transaction outputs are spendable yet.  If flag
// ScriptVerifyCheckLockTimeVerify is not set, the code continues as if OP_NOP2
// were executed.
func opcodeCheckLockTimeVerify(op *opcode, data []byte, vm *Engine) error {
	// If the ScriptVerifyCheckLockTimeVerify script flag is not set, treat
	// opcode as OP_NOP2 instead.
	if !vm.hasFlag(ScriptVerifyCheckLockTimeVerify) {
		if vm.hasFlag(ScriptDiscourageUpgradableNops) {
			return scriptError(ErrDiscourageUpgradableNOPs,
				"OP_NOP2 reserved for soft-fork upgrades")
		}
		return nil
	}

	// The current transaction locktime is a uint32 resulting in a maximum
	// locktime of 2^32-1 (the year 2106).  However, scriptNums are signed
	// and therefore a standard 4-byte scriptNum would only support up to a
	// maximum of 2^31-1 (the year 2038).  Thus, a 5-byte scriptNum is used
	// here since it will support up to 2^39-1 which allows dates beyond the
	// current locktime limit.
	//
	// PeekByteArray is used here instead of PeekInt because we do not want
	// to be limited to a 4-byte integer for reasons specified above.
	so, err := vm.dstack.PeekByteArray(0)
	if err != nil {
		return err
	}
	lockTime, err := MakeScriptNum(so, vm.dstack.verifyMinimalData, 5)
	if err != nil {
		return err
	}

	// In the rare event that the argument needs to be < 0 due to some
	// arithmetic being done first, you can always use
	// 0 OP_MAX OP_CHECKLOCKTIMEVERIFY.
	if lockTime < 0 {
		str := fmt.Sprintf("negative lock time: %d", lockTime)
		return scriptError(ErrNegativeLockTime, str)
	}

	// The lock time field of a transaction is either a block height at
	// which the transaction is finalized or a timestamp depending on if the
	// value is before the txscript.LockTimeThreshold.  When it is under the
	// threshold it is a block height.
	err = verifyLockTime(int64(vm.tx.LockTime), LockTimeThreshold,
		int64(lockTime))
	if err != nil {
		return err
	}

	// The lock time feature can also be disabled, thereby bypassing
	// OP_CHECKLOCKTIMEVERIFY, if every transaction input has been finalized by
	// setting its sequence to the maximum value (wire.MaxTxInSequenceNum).  This
	// condition would result in the transaction being allowed into the blockchain
	// making the opcode ineffective.
	//
	// This condition is prevented by enforcing that the input being used by
	// the opcode is unlocked (its sequence number is less than the max
	// value).  This is sufficient to prove correctness without having to
	// check every input.
	//
	// NOTE: This implies that even if the transaction is not finalized due to
	// another input being unlocked, the opcode execution will still fail when the
	// input being used by the opcode is locked.
	if vm.tx.TxIn[vm.txIdx].Sequence == wire.MaxTxInSequenceNum {
		return scriptError(ErrUnsatisfiedLockTime,
			"transaction input is finalized")
	}

	return nil
}

// opcodeCheckSequenceVerify compares the top item on the data stack to the
// LockTime field of the transaction containing the script signature
// validating if the transaction outputs are spendable yet.  If flag
// ScriptVerifyCheckSequenceVerify is not set, the code continues as if OP_NOP3
// were executed.
func opcodeCheckSequenceVerify(op *opcode, data []byte, vm *Engine) error {
	// If the ScriptVerifyCheckSequenceVerify script flag is not set, treat
	// opcode as OP_NOP3 instead.
	if !vm.hasFlag(ScriptVerifyCheckSequenceVerify) {
		if vm.hasFlag(ScriptDiscourageUpgradableNops) {
			return scriptError(ErrDiscourageUpgradableNOPs,
				"OP_NOP3 reserved for soft-fork upgrades")
		}
		return nil
	}

	// The current transaction sequence is a uint32 resulting in a maximum
	// sequence of 2^32-1.  However, scriptNums are signed and therefore a
	// standard 4-byte scriptNum would only support up to a maximum of
	// 2^31-1.  Thus, a 5-byte scriptNum is used here since it will support
	// up to 2^39-1 which allows sequences beyond the current sequence
	// limit.
	//
	// PeekByteArray is used here instead of PeekInt because we do not want
	// to be limited to a 4-byte integer for reasons specified above.
	so, err := vm.dstack.PeekByteArray(0)
	if err != nil {
		return err
	}
	stackSequence, err := MakeScriptNum(so, vm.dstack.verifyMinimalData, 5)
	if err != nil {
		return err
	}

	// In the rare event that the argument needs to be < 0 due to some
	// arithmetic being done first, you can always use
	// 0 OP_MAX OP_CHECKSEQUENCEVERIFY.
	if stackSequence < 0 {
		str := fmt.Sprintf("negative sequence: %d", stackSequence)
		return scriptError(ErrNegativeLockTime, str)
	}

	sequence := int64(stackSequence)

	// To provide for future soft-fork extensibility, if the
	// operand has the disabled lock-time flag set,
	// CHECKSEQUENCEVERIFY behaves as a NOP.
	if sequence&int64(wire.SequenceLockTimeDisabled) != 0 {
		return nil
	}

	// Transaction version numbers not high enough to trigger CSV rules must
	// fail.
	if uint32(vm.tx.Version) < 2 {
		str := fmt.Sprintf("invalid transaction version: %d",
			vm.tx.Version)
		return scriptError(ErrUnsatisfiedLockTime, str)
	}

	// Sequence numbers with their most significant bit set are not
	// consensus constrained. Testing that the transaction's sequence
	// number does not have this bit set prevents using this property
	// to get around a CHECKSEQUENCEVERIFY check.
	txSequence := int64(vm.tx.TxIn[vm.txIdx].Sequence)
	if txSequence&int64(wire.SequenceLockTimeDisabled) != 0 {
		str := fmt.Sprintf("transaction sequence has sequence "+
			"locktime disabled bit set: 0x%x", txSequence)
		return scriptError(ErrUnsatisfiedLockTime, str)
	}

	// Mask off non-consensus bits before doing comparisons.
	lockTimeMask := int64(wire.SequenceLockTimeIsSeconds |
		wire.SequenceLockTimeMask)
	return verifyLockTime(txSequence&lockTimeMask,
		wire.SequenceLockTimeIsSeconds, sequence&lockTimeMask)
}

// opcodeToAltStack removes the top item from the main data stack and pushes it
// onto the alternate data stack.
//
// Main data stack transformation: [... x1 x2 x3] -> [... x1 x2]
// Alt data stack transformation:  [... y1 y2 y3] -> [... y1 y2 y3 x3]
func opcodeToAltStack(op *opcode, data []byte, vm *Engine) error {
	so, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}
	vm.astack.PushByteArray(so)

	return nil
}

// opcodeFromAltStack removes the top item from the alternate data stack and
// pushes it onto the main data stack.
//
// Main data stack transformation: [... x1 x2 x3] -> [... x1 x2 x3 y3]
// Alt data stack transformation:  [... y1 y2 y3] -> [... y1 y2]
func opcodeFromAltStack(op *opcode, data []byte, vm *Engine) error {
	so, err := vm.astack.PopByteArray()
	if err != nil {
		return err
	}
	vm.dstack.PushByteArray(so)

	return nil
}

// opcode2Drop removes the top 2 items from the data stack.
//
// Stack transformation: [... x1 x2 x3] -> [... x1]
func opcode2Drop(op *opcode, data []byte, vm *Engine) error {
	return vm.dstack.DropN(2)
}

// opcode2Dup duplicates the top 2 items on the data stack.
//
// Stack transformation: [... x1 x2 x3] -> [... x1 x2 x3 x2 x3]
func opcode2Dup(op *opcode, data []byte, vm *Engine) error {
	return vm.dstack.DupN(2)
}

// opcode3Dup duplicates the top 3 items on the data stack.
//
// Stack transformation: [... x1 x2 x3] -> [... x1 x2 x3 x1 x2 x3]
func opcode3Dup(op *opcode, data []byte, vm *Engine) error {
	return vm.dstack.DupN(3)
}

// opcode2Over duplicates the 2 items before the top 2 items on the data stack.
//
// Stack transformation: [... x1 x2 x3 x4] -> [... x1 x2 x3 x4 x1 x2]
func opcode2Over(op *opcode, data []byte, vm *Engine) error {
	return vm.dstack.OverN(2)
}

// opcode2Rot rotates the top 6 items on the data stack to the left twice.
//
// Stack transformation: [... x1 x2 x3 x4 x5 x6] -> [... x3 x4 x5 x6 x1 x2]
func opcode2Rot(op *opcode, data []byte, vm *Engine) error {
	return vm.dstack.RotN(2)
}

// opcode2Swap swaps the top 2 items on the data stack with the 2 that come
// before them.
//
// Stack transformation: [... x1 x2 x3 x4] -> [... x3 x4 x1 x2]
func opcode2Swap(op *opcode, data []byte, vm *Engine) error {
	return vm.dstack.SwapN(2)
}

// opcodeIfDup duplicates the top item of the stack if it is not zero.
//
// Stack transformation (x1==0): [... x1] -> [... x1]
// Stack transformation (x1!=0): [... x1] -> [... x1 x1]
func opcodeIfDup(op *opcode, data []byte, vm *Engine) error {
	so, err := vm.dstack.PeekByteArray(0)
	if err != nil {
		return err
	}

	// Push copy of data iff it isn't zero
	if asBool(so) {
		vm.dstack.PushByteArray(so)
	}

	return nil
}

// opcodeDepth pushes the depth of the data stack prior to executing this
// opcode, encoded as a number, onto the data stack.
//
// Stack transformation: [...] -> [... <num of items on the stack>]
// Example with 2 items: [x1 x2] -> [x1 x2 2]
// Example with 3 items: [x1 x2 x3] -> [x1 x2 x3 3]
func opcodeDepth(op *opcode, data []byte, vm *Engine) error {
	vm.dstack.PushInt(scriptNum(vm.dstack.Depth()))
	return nil
}

// opcodeDrop removes the top item from the data stack.
//
// Stack transformation: [... x1 x2 x3] -> [... x1 x2]
func opcodeDrop(op *opcode, data []byte, vm *Engine) error {
	return vm.dstack.DropN(1)
}

// opcodeDup duplicates the top item on the data stack.
//
// Stack transformation: [... x1 x2 x3] -> [... x1 x2 x3 x3]
func opcodeDup(op *opcode, data []byte, vm *Engine) error {
	return vm.dstack.DupN(1)
}

// opcodeNip removes the item before the top item on the data stack.
//
// Stack transformation: [... x1 x2 x3] -> [... x1 x3]
func opcodeNip(op *opcode, data []byte, vm *Engine) error {
	return vm.dstack.NipN(1)
}

// opcodeOver duplicates the item before the top item on the data stack.
//
// Stack transformation: [... x1 x2 x3] -> [... x1 x2 x3 x2]
func opcodeOver(op *opcode, data []byte, vm *Engine) error {
	return vm.dstack.OverN(1)
}

// opcodePick treats the top item on the data stack as an integer and duplicates
// the item on the stack that number of items back to the top.
//
// Stack transformation: [xn ... x2 x1 x0 n] -> [xn ... x2 x1 x0 xn]
// Example with n=1: [x2 x1 x0 1] -> [x2 x1 x0 x1]
// Example with n=2: [x2 x1 x0 2] -> [x2 x1 x0 x2]
func opcodePick(op *opcode, data []byte, vm *Engine) error {
	val, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}

	return vm.dstack.PickN(val.Int32())
}

// opcodeRoll treats the top item on the data stack as an integer and moves
// the item on the stack that number of items back to the top.
//
// Stack transformation: [xn ... x2 x1 x0 n] -> [... x2 x1 x0 xn]
// Example with n=1: [x2 x1 x0 1] -> [x2 x0 x1]
// Example with n=2: [x2 x1 x0 2] -> [x1 x0 x2]
func opcodeRoll(op *opcode, data []byte, vm *Engine) error {
	val, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}

	return vm.dstack.RollN(val.Int32())
}

// opcodeRot rotates the top 3 items on the data stack to the left.
//
// Stack transformation: [... x1 x2 x3] -> [... x2 x3 x1]
func opcodeRot(op *opcode, data []byte, vm *Engine) error {
	return vm.dstack.RotN(1)
}

// opcodeSwap swaps the top two items on the stack.
//
// Stack transformation: [... x1 x2] -> [... x2 x1]
func opcodeSwap(op *opcode, data []byte, vm *Engine) error {
	return vm.dstack.SwapN(1)
}

// opcodeTuck inserts a duplicate of the top item of the data stack before the
// second-to-top item.
//
// Stack transformation: [... x1 x2] -> [... x2 x1 x2]
func opcodeTuck(op *opcode, data []byte, vm *Engine) error {
	return vm.dstack.Tuck()
}

// opcodeSize pushes the size of the top item of the data stack onto the data
// stack.
//
// Stack transformation: [... x1] -> [... x1 len(x1)]
func opcodeSize(op *opcode, data []byte, vm *Engine) error {
	so, err := vm.dstack.PeekByteArray(0)
	if err != nil {
		return err
	}

	vm.dstack.PushInt(scriptNum(len(so)))
	return nil
}

// opcodeEqual removes the top 2 items of the data stack, compares them as raw
// bytes, and pushes the result, encoded as a boolean, back to the stack.
//
// Stack transformation: [... x1 x2] -> [... bool]
func opcodeEqual(op *opcode, data []byte, vm *Engine) error {
	a, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}
	b, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}

	vm.dstack.PushBool(bytes.Equal(a, b))
	return nil
}

// opcodeEqualVerify is a combination of opcodeEqual and opcodeVerify.
// Specifically, it removes the top 2 items of the data stack, compares them,
// and pushes the result, encoded as a boolean, back to the stack.  Then, it
// examines the top item on the data stack as a boolean value and verifies it
// evaluates to true.  An error is returned if it does not.
//
// Stack transformation: [... x1 x2] -> [... bool] -> [...]
func opcodeEqualVerify(op *opcode, data []byte, vm *Engine) error {
	err := opcodeEqual(op, data, vm)
	if err == nil {
		err = abstractVerify(op, vm, ErrEqualVerify)
	}
	return err
}

// opcode1Add treats the top item on the data stack as an integer and replaces
// it with its incremented value (plus 1).
//
// Stack transformation: [... x1 x2] -> [... x1 x2+1]
func opcode1Add(op *opcode, data []byte, vm *Engine) error {
	m, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}

	vm.dstack.PushInt(m + 1)
	return nil
}

// opcode1Sub treats the top item on the data stack as an integer and replaces
// it with its decremented value (minus 1).
//
// Stack transformation: [... x1 x2] -> [... x1 x2-1]
func opcode1Sub(op *opcode, data []byte, vm *Engine) error {
	m, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	vm.dstack.PushInt(m - 1)

	return nil
}

// opcodeNegate treats the top item on the data stack as an integer and replaces
// it with its negation.
//
// Stack transformation: [... x1 x2] -> [... x1 -x2]
func opcodeNegate(op *opcode, data []byte, vm *Engine) error {
	m, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}

	vm.dstack.PushInt(-m)
	return nil
}

// opcodeAbs treats the top item on the data stack as an integer and replaces it
// it with its absolute value.
//
// Stack transformation: [... x1 x2] -> [... x1 abs(x2)]
func opcodeAbs(op *opcode, data []byte, vm *Engine) error {
	m, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}

	if m < 0 {
		m = -m
	}
	vm.dstack.PushInt(m)
	return nil
}

// opcodeNot treats the top item on the data stack as an integer and replaces
// it with its "inverted" value (0 becomes 1, non-zero becomes 0).
//
// NOTE: While it would probably make more sense to treat the top item as a
// boolean, and push the opposite, which is really what the intention of this
// opcode is, it is extremely important that is not done because integers are
// interpreted differently than booleans and the consensus rules for this opcode
// dictate the item is interpreted as an integer.
//
// Stack transformation (x2==0): [... x1 0] -> [... x1 1]
// Stack transformation (x2!=0): [... x1 1] -> [... x1 0]
// Stack transformation (x2!=0): [... x1 17] -> [... x1 0]
func opcodeNot(op *opcode, data []byte, vm *Engine) error {
	m, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}

	if m == 0 {
		vm.dstack.PushInt(scriptNum(1))
	} else {
		vm.dstack.PushInt(scriptNum(0))
	}
	return nil
}

// opcode0NotEqual treats the top item on the data stack as an integer and
// replaces it with either a 0 if it is zero, or a 1 if it is not zero.
//
// Stack transformation (x2==0): [... x1 0] -> [... x1 0]
// Stack transformation (x2!=0): [... x1 1] -> [... x1 1]
// Stack transformation (x2!=0): [... x1 17] -> [... x1 1]
func opcode0NotEqual(op *opcode, data []byte, vm *Engine) error {
	m, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}

	if m != 0 {
		m = 1
	}
	vm.dstack.PushInt(m)
	return nil
}

// opcodeAdd treats the top two items on the data stack as integers and replaces
// them with their sum.
//
// Stack transformation: [... x1 x2] -> [... x1+x2]
func opcodeAdd(op *opcode, data []byte, vm *Engine) error {
	v0, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}

	v1, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}

	vm.dstack.PushInt(v0 + v1)
	return nil
}

// opcodeSub treats the top two items on the data stack as integers and replaces
// them with the result of subtracting the top entry from the second-to-top
// entry.
//
// Stack transformation: [... x1 x2] -> [... x1-x2]
func opcodeSub(op *opcode, data []byte, vm *Engine) error {
	v0, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}

	v1, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}

	vm.dstack.PushInt(v1 - v0)
	return nil
}

// opcodeBoolAnd treats the top two items on the data stack as integers.  When
// both of them are not zero, they are replaced with a 1, otherwise a 0.
//
// Stack transformation (x1==0, x2==0): [... 0 0] -> [... 0]
// Stack transformation (x1!=0, x2==0): [... 5 0] -> [... 0]
// Stack transformation (x1==0, x2!=0): [... 0 7] -> [... 0]
// Stack transformation (x1!=0, x2!=0): [... 4 8] -> [... 1]
func opcodeBoolAnd(op *opcode, data []byte, vm *Engine) error {
	v0, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}

	v1, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}

	if v0 != 0 && v1 != 0 {
		vm.dstack.PushInt(scriptNum(1))
	} else {
		vm.dstack.PushInt(scriptNum(0))
	}

	return nil
}

// opcodeBoolOr treats the top two items on the data stack as integers.  When
// either of them are not zero, they are replaced with a 1, otherwise a 0.
//
// Stack transformation (x1==0, x2==0): [... 0 0] -> [... 0]
// Stack transformation (x1!=0, x2==0): [... 5 0] -> [... 1]
// Stack transformation (x1==0, x2!=0): [... 0 7] -> [... 1]
// Stack transformation (x1!=0, x2!=0): [... 4 8] -> [... 1]
func opcodeBoolOr(op *opcode, data []byte, vm *Engine) error {
	v0, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}

	v1, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}

	if v0 != 0 || v1 != 0 {
		vm.dstack.PushInt(scriptNum(1))
	} else {
		vm.dstack.PushInt(scriptNum(0))
	}

	return nil
}

// opcodeNumEqual treats the top two items on the data stack as integers.  When
// they are equal, they are replaced with a 1, otherwise a 0.
//
// Stack transformation (x1==x2): [... 5 5] -> [... 1]
// Stack transformation (x1!=x2): [... 5 7] -> [... 0]
func opcodeNumEqual(op *opcode, data []byte, vm *Engine) error {
	v0, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}

	v1, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}

	if v0 == v1 {
		vm.dstack.PushInt(scriptNum(1))
	} else {
		vm.dstack.PushInt(scriptNum(0))
	}

	return nil
}

// opcodeNumEqualVerify is a combination of opcodeNumEqual and opcodeVerify.
//
// Specifically, treats the top two items on the data stack as integers.  When
// they are equal, they are replaced with a 1, otherwise a 0.  Then, it examines
// the top item on the data stack as a boolean value and verifies it evaluates
// to true.  An error is returned if it does not.
//
// Stack transformation: [... x1 x2] -> [... bool] -> [...]
func opcodeNumEqualVerify(op *opcode, data []byte, vm *Engine) error {
	err := opcodeNumEqual(op, data, vm)
	if err == nil {
		err = abstractVerify(op, vm, ErrNumEqualVerify)
	}
	return err
}

// opcodeNumNotEqual treats the top two items on the data stack as integers.
// When they are NOT equal, they are replaced with a 1, otherwise a 0.
//
// Stack transformation (x1==x2): [... 5 5] -> [... 0]
// Stack transformation (x1!=x2): [... 5 7] -> [... 1]
func opcodeNumNotEqual(op *opcode, data []byte, vm *Engine) error {
	v0, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}

	v1, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}

	if v0 != v1 {
		vm.dstack.PushInt(scriptNum(1))
	} else {
		vm.dstack.PushInt(scriptNum(0))
	}

	return nil
}

// opcodeLessThan treats the top two items on the data stack as integers.  When
// the second-to-top item is less than the top item, they are replaced with a 1,
// otherwise a 0.
//
// Stack transformation: [... x1 x2] -> [... bool]
func opcodeLessThan(op *opcode, data []byte, vm *Engine) error {
	v0, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}

	v1, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}

	if v1 < v0 {
		vm.dstack.PushInt(scriptNum(1))
	} else {
		vm.dstack.PushInt(scriptNum(0))
	}

	return nil
}

// opcodeGreaterThan treats the top two items on the data stack as integers.
// When the second-to-top item is greater than the top item, they are replaced
// with a 1, otherwise a 0.
//
// Stack transformation: [... x1 x2] -> [... bool]
func opcodeGreaterThan(op *opcode, data []byte, vm *Engine) error {
	v0, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}

	v1, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}

	if v1 > v0 {
		vm.dstack.PushInt(scriptNum(1))
	} else {
		vm.dstack.PushInt(scriptNum(0))
	}
	return nil
}

// opcodeLessThanOrEqual treats the top two items on the data stack as integers.
// When the second-to-top item is less than or equal to the top item, they are
// replaced with a 1, otherwise a 0.
//
// Stack transformation: [... x1 x2] -> [... bool]
func opcodeLessThanOrEqual(op *opcode, data []byte, vm *Engine) error {
	v0, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}

	v1, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}

	if v1 <= v0 {
		vm.dstack.PushInt(scriptNum(1))
	} else {
		vm.dstack.PushInt(scriptNum(0))
	}
	return nil
}

// opcodeGreaterThanOrEqual treats the top two items on the data stack as
// integers.  When the second-to-top item is greater than or equal to the top
// item, they are replaced with a 1, otherwise a 0.
//
// Stack transformation: [... x1 x2] -> [... bool]
func opcodeGreaterThanOrEqual(op *opcode, data []byte, vm *Engine) error {
	v0, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}

	v1, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}

	if v1 >= v0 {
		vm.dstack.PushInt(scriptNum(1))
	} else {
		vm.dstack.PushInt(scriptNum(0))
	}

	return nil
}

// opcodeMin treats the top two items on the data stack as integers and replaces
// them with the minimum of the two.
//
// Stack transformation: [... x1 x2] -> [... min(x1, x2)]
func opcodeMin(op *opcode, data []byte, vm *Engine) error {
	v0, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}

	v1, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}

	if v1 < v0 {
		vm.dstack.PushInt(v1)
	} else {
		vm.dstack.PushInt(v0)
	}

	return nil
}

// opcodeMax treats the top two items on the data stack as integers and replaces
// them with the maximum of the two.
//
// Stack transformation: [... x1 x2] -> [... max(x1, x2)]
func opcodeMax(op *opcode, data []byte, vm *Engine) error {
	v0, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}

	v1, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}

	if v1 > v0 {
		vm.dstack.PushInt(v1)
	} else {
		vm.dstack.PushInt(v0)
	}

	return nil
}

// opcodeWithin treats the top 3 items on the data stack as integers.  When the
// value to test is within the specified range (left inclusive), they are
// replaced with a 1, otherwise a 0.
//
// The top item is the max value, the second-top-item is the minimum value, and
// the third-to-top item is the value to test.
//
// Stack transformation: [... x1 min max] -> [... bool]
func opcodeWithin(op *opcode, data []byte, vm *Engine) error {
	maxVal, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}

	minVal, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}

	x, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}

	if x >= minVal && x < maxVal {
		vm.dstack.PushInt(scriptNum(1))
	} else {
		vm.dstack.PushInt(scriptNum(0))
	}
	return nil
}

// calcHash calculates the hash of hasher over buf.
func calcHash(buf []byte, hasher hash.Hash) []byte {
	hasher.Write(buf)
	return hasher.Sum(nil)
}

// opcodeRipemd160 treats the top item of the data stack as raw bytes and
// replaces it with ripemd160(data).
//
// Stack transformation: [... x1] -> [... ripemd160(x1)]
func opcodeRipemd160(op *opcode, data []byte, vm *Engine) error {
	buf, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}

	vm.dstack.PushByteArray(calcHash(buf, ripemd160.New()))
	return nil
}

// opcodeSha1 treats the top item of the data stack as raw bytes and replaces it
// with sha1(data).
//
// Stack transformation: [... x1] -> [... sha1(x1)]
func opcodeSha1(op *opcode, data []byte, vm *Engine) error {
	buf, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}

	hash := sha1.Sum(buf)
	vm.dstack.PushByteArray(hash[:])
	return nil
}

// opcodeSha256 treats the top item of the data stack as raw bytes and replaces
// it with sha256(data).
//
// Stack transformation: [... x1] -> [... sha256(x1)]
func opcodeSha256(op *opcode, data []byte, vm *Engine) error {
	buf, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}

	hash := sha256.Sum256(buf)
	vm.dstack.PushByteArray(hash[:])
	return nil
}

// opcodeHash160 treats the top item of the data stack as raw bytes and replaces
// it with ripemd160(sha256(data)).
//
// Stack transformation: [... x1] -> [... ripemd160(sha256(x1))]
func opcodeHash160(op *opcode, data []byte, vm *Engine) error {
	buf, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}

	hash := sha256.Sum256(buf)
	vm.dstack.PushByteArray(calcHash(hash[:], ripemd160.New()))
	return nil
}

// opcodeHash256 treats the top item of the data stack as raw bytes and replaces
// it with sha256(sha256(data)).
//
// Stack transformation: [... x1] -> [... sha256(sha256(x1))]
func opcodeHash256(op *opcode, data []byte, vm *Engine) error {
	buf, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}

	vm.dstack.PushByteArray(chainhash.DoubleHashB(buf))
	return nil
}

// opcodeCodeSeparator stores the current script offset as the most recently
// seen OP_CODESEPARATOR which is used during signature checking.
//
// This opcode does not change the contents of the data stack.
func opcodeCodeSeparator(op *opcode, data []byte, vm *Engine) error {
	vm.lastCodeSep = int(vm.tokenizer.ByteIndex())

	if vm.taprootCtx != nil {
		vm.taprootCtx.codeSepPos = uint32(vm.tokenizer.OpcodePosition())
	}

	return nil
}

// opcodeCheckSig treats the top 2 items on the stack as a public key and a
// signature and replaces them with a bool which indicates if the signature was
// successfully verified.
//
// The process of verifying a signature requires calculating a signature hash in
// the same way the transaction signer did.  It involves hashing portions of the
// transaction based on the hash type byte (which is the final byte of the
// signature) and the portion of the script starting from the most recent
// OP_CODESEPARATOR (or the beginning of the script if there are none) to the
// end of the script (with any other OP_CODESEPARATORs removed).  Once this
// "script hash" is calculated, the signature is checked using standard
// cryptographic methods against the provided public key.
//
// Stack transformation: [... signature pubkey] -> [... bool]
func opcodeCheckSig(op *opcode, data []byte, vm *Engine) error {
	pkBytes, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}

	fullSigBytes, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}

	// The signature actually needs needs to be longer than this, but at
	// least 1 byte is needed for the hash type below.  The full length is
	// checked depending on the script flags and upon parsing the signature.
	//
	// This only applies if tapscript verification isn't active, as this
	// check is done within the sighash itself.
	if vm.taprootCtx == nil && len(fullSigBytes) < 1 {
		vm.dstack.PushBool(false)
		return nil
	}

	var sigVerifier signatureVerifier
	switch {
	// If no witness program is active, then we're verifying under the
	// base consensus rules.
	case vm.witnessProgram == nil:
		sigVerifier, err = newBaseSigVerifier(
			pkBytes, fullSigBytes, vm,
		)
		if err != nil {
			var scriptErr Error
			if errors.As(err, &scriptErr) {
				return err
			}

			vm.dstack.PushBool(false)
			return nil
		}

	// If the base segwit version is active, then we'll create the verifier
	// that factors in those new consensus rules.
	case vm.isWitnessVersionActive(BaseSegwitWitnessVersion):
		sigVerifier, err = newBaseSegwitSigVerifier(
			pkBytes, fullSigBytes, vm,
		)
		if err != nil {
			var scriptErr Error
			if errors.As(err, &scriptErr) {
				return err
			}

			vm.dstack.PushBool(false)
			return nil
		}

	// Otherwise, this is routine tapscript execution.
	case vm.taprootCtx != nil:
		// Account for changes in the sig ops budget after this
		// execution, but only for non-empty signatures.
		if len(fullSigBytes) > 0 {
			if err := vm.taprootCtx.tallysigOp(); err != nil {
				return err
			}
		}

		// Empty public keys immediately cause execution to fail.
		if len(pkBytes) == 0 {
			return scriptError(ErrTaprootPubkeyIsEmpty, "")
		}

		// If this is tapscript execution, and the signature was
		// actually an empty vector, then we push on an empty vector
		// and continue execution from there, but only if the pubkey
		// isn't empty.
		if len(fullSigBytes) == 0 {
			vm.dstack.PushByteArray([]byte{})
			return nil
		}

		// If the constructor fails immediately, then it's because
		// the public key size is zero, so we'll fail all script
		// execution.
		sigVerifier, err = newBaseTapscriptSigVerifier(
			pkBytes, fullSigBytes, vm,
		)
		if err != nil {
			return err
		}

	default:
		// We skip segwit v1 in isolation here, as the v1 rules aren't
		// used in script execution (for sig verification) and are only
		// part of the top-level key-spend verification which we
		// already skipped.
		//
		// In other words, this path shouldn't ever be reached
		//
		// TODO(roasbeef): return an error?
	}

	valid := sigVerifier.Verify()

	switch {
	// For tapscript, and prior execution with null fail active, if the
	// signature is invalid, then this MUST be an empty signature.
	case !valid && vm.taprootCtx != nil && len(fullSigBytes) != 0:
		fallthrough
	case !valid && vm.hasFlag(ScriptVerifyNullFail) && len(fullSigBytes) > 0:
		str := "signature not empty on failed checksig"
		return scriptError(ErrNullFail, str)
	}

	vm.dstack.PushBool(valid)
	return nil
}

// opcodeCheckSigVerify is a combination of opcodeCheckSig and opcodeVerify.
// The opcodeCheckSig function is invoked followed by opcodeVerify.  See the
// documentation for each of those opcodes for more details.
//
// Stack transformation: [... signature pubkey] -> [... bool] -> [...]
func opcodeCheckSigVerify(op *opcode, data []byte, vm *Engine) error {
	err := opcodeCheckSig(op, data, vm)
	if err == nil {
		err = abstractVerify(op, vm, ErrCheckSigVerify)
	}
	return err
}

// opcodeCheckSigAdd implements the OP_CHECKSIGADD operation defined in BIP
// 342. This is a replacement for OP_CHECKMULTISIGVERIFY and OP_CHECKMULTISIG
// that lends better to batch sig validation, as well as a possible future of
// signature aggregation across inputs.
//
// The op code takes a public key, an integer (N) and a signature, and returns
// N if the signature was the empty vector, and n+1 otherwise.
//
// Stack transformation: [... pubkey n signature] -> [... n | n+1 ] -> [...]
func opcodeCheckSigAdd(op *opcode, data []byte, vm *Engine) error {
	// This op code can only be used if tapsript execution is active.
	// Before the soft fork, this opcode was marked as an invalid reserved
	// op code.
	if vm.taprootCtx == nil {
		str := fmt.Sprintf("attempt to execute invalid opcode %s", op.name)
		return scriptError(ErrReservedOpcode, str)
	}

	// Pop the signature, integer n, and public key off the stack.
	pubKeyBytes, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}
	accumulatorInt, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	sigBytes, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}

	// Only non-empty signatures count towards the total tapscript sig op
	// limit.
	if len(sigBytes) != 0 {
		// Account for changes in the sig ops budget after this execution.
		if err := vm.taprootCtx.tallysigOp(); err != nil {
			return err
		}
	}

	// Empty public keys immediately cause execution to fail.
	if len(pubKeyBytes) == 0 {
		return scriptError(ErrTaprootPubkeyIsEmpty, "")
	}

	// If the signature is empty, then we'll just push the value N back
	// onto the stack and continue from here.
	if len(sigBytes) == 0 {
		vm.dstack.PushInt(accumulatorInt)
		return nil
	}

	// Otherwise, we'll attempt to validate the signature as normal.
	//
	// If the constructor fails immediately, then it's because the public
	// key size is zero, so we'll fail all script execution.
	sigVerifier, err := newBaseTapscriptSigVerifier(
		pubKeyBytes, sigBytes, vm,
	)
	if err != nil {
		return err
	}

	valid := sigVerifier.Verify()

	// If the signature is invalid, this we fail execution, as it should
	// have been an empty signature.
	if !valid {
		str := "signature not empty on failed checksig"
		return scriptError(ErrNullFail, str)
	}

	// Otherwise, we increment the accumulatorInt by one, and push that
	// back onto the stack.
	vm.dstack.PushInt(accumulatorInt + 1)

	return nil
}

// parsedSigInfo houses a raw signature along with its parsed form and a flag
// for whether or not it has already been parsed.  It is used to prevent parsing
// the same signature multiple times when verifying a multisig.
type parsedSigInfo struct {
	signature       []byte
	parsedSignature *ecdsa.Signature
	parsed          bool
}

// opcodeCheckMultiSig treats the top item on the stack as an integer number of
// public keys, followed by that many entries as raw data representing the public
// keys, followed by the integer number of signatures, followed by that many
// entries as raw data representing the signatures.
//
// Due to a bug in the original Satoshi client implementation, an additional
// dummy argument is also required by the consensus rules, although it is not
// used.  The dummy value SHOULD be an OP_0, although that is not required by
// the consensus rules.  When the ScriptStrictMultiSig flag is set, it must be
// OP_0.
//
// All of the aforementioned stack items are replaced with a bool which
// indicates if the requisite number of signatures were successfully verified.
//
// See the opcodeCheckSigVerify documentation for more details about the process
// for verifying each signature.
//
// Stack transformation:
// [... dummy [sig ...] numsigs [pubkey ...] numpubkeys] -> [... bool]
func opcodeCheckMultiSig(op *opcode, data []byte, vm *Engine) error {
	// If we're doing tapscript execution, then this op code is disabled.
	if vm.taprootCtx != nil {
		str := fmt.Sprintf("OP_CHECKMULTISIG and " +
			"OP_CHECKMULTISIGVERIFY are disabled during " +
			"tapscript execution")
		return scriptError(ErrTapscriptCheckMultisig, str)
	}

	numKeys, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}

	numPubKeys := int(numKeys.Int32())
	if numPubKeys < 0 {
		str := fmt.Sprintf("number of pubkeys %d is negative",
			numPubKeys)
		return scriptError(ErrInvalidPubKeyCount, str)
	}
	if numPubKeys > MaxPubKeysPerMultiSig {
		str := fmt.Sprintf("too many pubkeys: %d > %d",
			numPubKeys, MaxPubKeysPerMultiSig)
		return scriptError(ErrInvalidPubKeyCount, str)
	}
	vm.numOps += numPubKeys
	if vm.numOps > MaxOpsPerScript {
		str := fmt.Sprintf("exceeded max operation limit of %d",
			MaxOpsPerScript)
		return scriptError(ErrTooManyOperations, str)
	}

	pubKeys := make([][]byte, 0, numPubKeys)
	for i := 0; i < numPubKeys; i++ {
		pubKey, err := vm.dstack.PopByteArray()
		if err != nil {
			return err
		}
		pubKeys = append(pubKeys, pubKey)
	}

	numSigs, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	numSignatures := int(numSigs.Int32())
	if numSignatures < 0 {
		str := fmt.Sprintf("number of signatures %d is negative",
			numSignatures)
		return scriptError(ErrInvalidSignatureCount, str)

	}
	if numSignatures > numPubKeys {
		str := fmt.Sprintf("more signatures than pubkeys: %d > %d",
			numSignatures, numPubKeys)
		return scriptError(ErrInvalidSignatureCount, str)
	}

	signatures := make([]*parsedSigInfo, 0, numSignatures)
	for i := 0; i < numSignatures; i++ {
		signature, err := vm.dstack.PopByteArray()
		if err != nil {
			return err
		}
		sigInfo := &parsedSigInfo{signature: signature}
		signatures = append(signatures, sigInfo)
	}

	// A bug in the original Satoshi client implementation means one more
	// stack value than should be used must be popped.  Unfortunately, this
	// buggy behavior is now part of the consensus and a hard fork would be
	// required to fix it.
	dummy, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}

	// Since the dummy argument is otherwise not checked, it could be any
	// value which unfortunately provides a source of malleability.  Thus,
	// there is a script flag to force an error when the value is NOT 0.
	if vm.hasFlag(ScriptStrictMultiSig) && len(dummy) != 0 {
		str := fmt.Sprintf("multisig dummy argument has length %d "+
			"instead of 0", len(dummy))
		return scriptError(ErrSigNullDummy, str)
	}

	// Get script starting from the most recent OP_CODESEPARATOR.
	script := vm.subScript()

	// Remove the signature in pre version 0 segwit scripts since there is
	// no way for a signature to sign itself.
	if !vm.isWitnessVersionActive(0) {
		for _, sigInfo := range signatures {
			script = removeOpcodeByData(script, sigInfo.signature)
		}
	}

	success := true
	numPubKeys++
	pubKeyIdx := -1
	signatureIdx := 0
	for numSignatures > 0 {
		// When there are more signatures than public keys remaining,
		// there is no way to succeed since too many signatures are
		// invalid, so exit early.
		pubKeyIdx++
		numPubKeys--
		if numSignatures > numPubKeys {
			success = false
			break
		}

		sigInfo := signatures[signatureIdx]
		pubKey := pubKeys[pubKeyIdx]

		// The order of the signature and public key evaluation is
		// important here since it can be distinguished by an
		// OP_CHECKMULTISIG NOT when the strict encoding flag is set.

		rawSig := sigInfo.signature
		if len(rawSig) == 0 {
			// Skip to the next pubkey if signature is empty.
			continue
		}

		// Split the signature into hash type and signature components.
		hashType := SigHashType(rawSig[len(rawSig)-1])
		signature := rawSig[:len(rawSig)-1]

		// Only parse and check the signature encoding once.
		var parsedSig *ecdsa.Signature
		if !sigInfo.parsed {
			if err := vm.checkHashTypeEncoding(hashType); err != nil {
				return err
			}
			if err := vm.checkSignatureEncoding(signature); err != nil {
				return err
			}

			// Parse the signature.
			var err error
			if vm.hasFlag(ScriptVerifyStrictEncoding) ||
				vm.hasFlag(ScriptVerifyDERSignatures) {

				parsedSig, err = ecdsa.ParseDERSignature(signature)
			} else {
				parsedSig, err = ecdsa.ParseSignature(signature)
			}
			sigInfo.parsed = true
			if err != nil {
				continue
			}
			sigInfo.parsedSignature = parsedSig
		} else {
			// Skip to the next pubkey if the signature is invalid.
			if sigInfo.parsedSignature == nil {
				continue
			}

			// Use the already parsed signature.
			parsedSig = sigInfo.parsedSignature
		}

		if err := vm.checkPubKeyEncoding(pubKey); err != nil {
			return err
		}

		// Parse the pubkey.
		parsedPubKey, err := btcec.ParsePubKey(pubKey)
		if err != nil {
			continue
		}

		// Generate the signature hash based on the signature hash type.
		var hash []byte
		if vm.isWitnessVersionActive(0) {
			var sigHashes *TxSigHashes
			if vm.hashCache != nil {
				sigHashes = vm.hashCache
			} else {
				sigHashes = NewTxSigHashes(
					&vm.tx, vm.prevOutFetcher,
				)
			}

			hash, err = calcWitnessSignatureHashRaw(script, sigHashes, hashType,
				&vm.tx, vm.txIdx, vm.inputAmount,
				vm.hasFlag(ScriptVerifySigHashRangeproof))
			if err != nil {
				return err
			}
		} else {
			hash = calcSignatureHash(script, hashType, &vm.tx, vm.txIdx,
				vm.hasFlag(ScriptVerifySigHashRangeproof))
		}

		var valid bool
		if vm.sigCache != nil {
			var sigHash chainhash.Hash
			copy(sigHash[:], hash)

			valid = vm.sigCache.Exists(sigHash, signature, pubKey)
			if !valid && parsedSig.Verify(hash, parsedPubKey) {
				vm.sigCache.Add(sigHash, signature, pubKey)
				valid = true
			}
		} else {
			valid = parsedSig.Verify(hash, parsedPubKey)
		}

		if valid {
			// PubKey verified, move on to the next signature.
			signatureIdx++
			numSignatures--
		}
	}

	if !success && vm.hasFlag(ScriptVerifyNullFail) {
		for _, sig := range signatures {
			if len(sig.signature) > 0 {
				str := "not all signatures empty on failed checkmultisig"
				return scriptError(ErrNullFail, str)
			}
		}
	}

	vm.dstack.PushBool(success)
	return nil
}

// opcodeCheckMultiSigVerify is a combination of opcodeCheckMultiSig and
// opcodeVerify.  The opcodeCheckMultiSig is invoked followed by opcodeVerify.
// See the documentation for each of those opcodes for more details.
//
// Stack transformation:
// [... dummy [sig ...] numsigs [pubkey ...] numpubkeys] -> [... bool] -> [...]
func opcodeCheckMultiSigVerify(op *opcode, data []byte, vm *Engine) error {
	err := opcodeCheckMultiSig(op, data, vm)
	if err == nil {
		err = abstractVerify(op, vm, ErrCheckMultiSigVerify)
	}
	return err
}

// errTapscriptOnlyOpcode returns the error for attempting to execute an
// opcode that is only defined once tapscript execution is active.  Before
// tapscript, these byte values were invalid reserved op codes.
func errTapscriptOnlyOpcode(op *opcode) error {
	str := fmt.Sprintf("attempt to execute invalid opcode %s", op.name)
	return scriptError(ErrReservedOpcode, str)
}

// pushLE32 pushes the passed value onto the data stack as 4 little endian
// bytes.
func pushLE32(s *stack, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	s.PushByteArray(b[:])
}

// pushLE64 pushes the passed value onto the data stack as 8 little endian
// bytes.
func pushLE64(s *stack, v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	s.PushByteArray(b[:])
}

// opcodeCat concatenates the top two stack items.
//
// Stack transformation: [... x1 x2] -> [... x1 || x2]
func opcodeCat(op *opcode, data []byte, vm *Engine) error {
	v2, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}
	v1, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}

	if len(v1)+len(v2) > MaxScriptElementSize {
		str := fmt.Sprintf("concatenated size %d exceeds max allowed size %d",
			len(v1)+len(v2), MaxScriptElementSize)
		return scriptError(ErrInvalidStackOperation, str)
	}

	result := make([]byte, 0, len(v1)+len(v2))
	result = append(result, v1...)
	result = append(result, v2...)
	vm.dstack.PushByteArray(result)
	return nil
}

// opcodeLeft replaces the second stack item with its prefix of the length
// given by the top stack item.  A start beyond the end of the string yields
// the whole string.
//
// Stack transformation: [... x1 start] -> [... x1[:start]]
func opcodeLeft(op *opcode, data []byte, vm *Engine) error {
	startNum, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	v, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}

	if startNum < 0 {
		str := fmt.Sprintf("start index %d is negative", startNum)
		return scriptError(ErrInvalidStackOperation, str)
	}

	start := int(startNum.Int32())
	if start >= len(v) {
		start = len(v)
	}
	result := make([]byte, start)
	copy(result, v)
	vm.dstack.PushByteArray(result)
	return nil
}

// opcodeRight replaces the second stack item with its suffix starting at the
// index given by the top stack item.  A start beyond the end of the string
// yields an empty string.
//
// Stack transformation: [... x1 start] -> [... x1[start:]]
func opcodeRight(op *opcode, data []byte, vm *Engine) error {
	startNum, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	v, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}

	if startNum < 0 {
		str := fmt.Sprintf("start index %d is negative", startNum)
		return scriptError(ErrInvalidStackOperation, str)
	}

	start := int(startNum.Int32())
	if start >= len(v) {
		vm.dstack.PushByteArray(nil)
		return nil
	}
	result := make([]byte, len(v)-start)
	copy(result, v[start:])
	vm.dstack.PushByteArray(result)
	return nil
}

// extractSubstr implements the shared behavior of OP_SUBSTR and
// OP_SUBSTR_LAZY.  The strict variant fails on any out of range operand
// while the lazy variant clamps the requested range to the string.
func extractSubstr(vm *Engine, lazy bool) error {
	lengthNum, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	startNum, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	v, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}

	start, length := int64(startNum), int64(lengthNum)
	if lazy {
		if start < 0 {
			start = 0
		}
		if length < 0 {
			length = 0
		}
		if start >= int64(len(v)) {
			vm.dstack.PushByteArray(nil)
			return nil
		}
		if length > MaxScriptElementSize {
			length = MaxScriptElementSize
		}
		if start+length > int64(len(v)) {
			length = int64(len(v)) - start
		}
	}

	if length < 0 || start < 0 || start >= int64(len(v)) ||
		length > int64(len(v)) || start+length > int64(len(v)) {

		str := fmt.Sprintf("substring [%d:%d] is out of range for a "+
			"string of length %d", start, start+length, len(v))
		return scriptError(ErrInvalidStackOperation, str)
	}

	result := make([]byte, length)
	copy(result, v[start:])
	vm.dstack.PushByteArray(result)
	return nil
}

// opcodeSubstr replaces the third stack item with the substring described by
// the start index and length on top of it.  Any operand out of range for the
// string fails the script.
//
// Stack transformation: [... x1 start length] -> [... x1[start:start+length]]
func opcodeSubstr(op *opcode, data []byte, vm *Engine) error {
	return extractSubstr(vm, false)
}

// opcodeSubstrLazy behaves as opcodeSubstr except that out of range operands
// are clamped to the string instead of failing the script.
//
// Stack transformation: [... x1 start length] -> [... x1[start:start+length]]
func opcodeSubstrLazy(op *opcode, data []byte, vm *Engine) error {
	return extractSubstr(vm, true)
}

// opcodeInvert treats the top stack item as a byte string and inverts each
// byte.
//
// Stack transformation: [... x1] -> [... ^x1]
func opcodeInvert(op *opcode, data []byte, vm *Engine) error {
	v, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}

	result := make([]byte, len(v))
	for i, b := range v {
		result[i] = ^b
	}
	vm.dstack.PushByteArray(result)
	return nil
}

// popBitwiseOperands pops the two operands shared by the binary bitwise
// opcodes and ensures they are byte strings of equal length.
func popBitwiseOperands(vm *Engine) ([]byte, []byte, error) {
	v2, err := vm.dstack.PopByteArray()
	if err != nil {
		return nil, nil, err
	}
	v1, err := vm.dstack.PopByteArray()
	if err != nil {
		return nil, nil, err
	}
	if len(v1) != len(v2) {
		str := fmt.Sprintf("operand lengths %d and %d are not equal",
			len(v1), len(v2))
		return nil, nil, scriptError(ErrInvalidInputLength, str)
	}
	return v1, v2, nil
}

// opcodeAnd combines the top two equally sized stack items with a bitwise
// and.
//
// Stack transformation: [... x1 x2] -> [... x1&x2]
func opcodeAnd(op *opcode, data []byte, vm *Engine) error {
	v1, v2, err := popBitwiseOperands(vm)
	if err != nil {
		return err
	}

	result := make([]byte, len(v1))
	for i := range v1 {
		result[i] = v1[i] & v2[i]
	}
	vm.dstack.PushByteArray(result)
	return nil
}

// opcodeOr combines the top two equally sized stack items with a bitwise or.
//
// Stack transformation: [... x1 x2] -> [... x1|x2]
func opcodeOr(op *opcode, data []byte, vm *Engine) error {
	v1, v2, err := popBitwiseOperands(vm)
	if err != nil {
		return err
	}

	result := make([]byte, len(v1))
	for i := range v1 {
		result[i] = v1[i] | v2[i]
	}
	vm.dstack.PushByteArray(result)
	return nil
}

// opcodeXor combines the top two equally sized stack items with a bitwise
// xor.
//
// Stack transformation: [... x1 x2] -> [... x1^x2]
func opcodeXor(op *opcode, data []byte, vm *Engine) error {
	v1, v2, err := popBitwiseOperands(vm)
	if err != nil {
		return err
	}

	result := make([]byte, len(v1))
	for i := range v1 {
		result[i] = v1[i] ^ v2[i]
	}
	vm.dstack.PushByteArray(result)
	return nil
}

// opcodeLShift shifts the second stack item left by the number of bits given
// by the top stack item.  The result grows by whole shifted bytes and is
// reduced to its minimal representation by trimming trailing zero bytes.
//
// Stack transformation: [... x1 n] -> [... x1<<n]
func opcodeLShift(op *opcode, data []byte, vm *Engine) error {
	bitsNum, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	v, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}

	if bitsNum < 0 {
		str := fmt.Sprintf("shift amount %d is negative", bitsNum)
		return scriptError(ErrInvalidStackOperation, str)
	}

	fullBytes := int(bitsNum.Int32()) / 8
	bits := uint(bitsNum.Int32()) % 8
	extra := 0
	if bits != 0 {
		extra = 1
	}
	if len(v)+fullBytes+extra > MaxScriptElementSize {
		str := fmt.Sprintf("shifted size %d exceeds max allowed size %d",
			len(v)+fullBytes+extra, MaxScriptElementSize)
		return scriptError(ErrInvalidStackOperation, str)
	}

	result := make([]byte, 0, len(v)+fullBytes+1)
	result = append(result, make([]byte, fullBytes)...)
	result = append(result, v...)
	result = append(result, 0)

	var temp uint16
	for i := range result {
		temp = uint16(result[i])<<bits | temp>>8
		result[i] = byte(temp)
	}

	// Reduce to the minimal representation.
	for len(result) > 0 && result[len(result)-1] == 0 {
		result = result[:len(result)-1]
	}

	vm.dstack.PushByteArray(result)
	return nil
}

// opcodeRShift shifts the second stack item right by the number of bits
// given by the top stack item.  The result is reduced to its minimal
// representation by trimming trailing zero bytes.
//
// Stack transformation: [... x1 n] -> [... x1>>n]
func opcodeRShift(op *opcode, data []byte, vm *Engine) error {
	bitsNum, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	v, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}

	if bitsNum < 0 {
		str := fmt.Sprintf("shift amount %d is negative", bitsNum)
		return scriptError(ErrInvalidStackOperation, str)
	}

	fullBytes := int(bitsNum.Int32()) / 8
	bits := uint(bitsNum.Int32()) % 8
	if fullBytes >= len(v) {
		vm.dstack.PushByteArray(nil)
		return nil
	}

	result := make([]byte, len(v)-fullBytes)
	copy(result, v[fullBytes:])

	var temp uint16
	for i := len(result) - 1; i >= 0; i-- {
		temp = uint16(result[i])<<(8-bits) | (temp<<8)&0xff00
		result[i] = byte((temp & 0xff00) >> 8)
	}

	// Reduce to the minimal representation.
	for len(result) > 0 && result[len(result)-1] == 0 {
		result = result[:len(result)-1]
	}

	vm.dstack.PushByteArray(result)
	return nil
}

// opcodeDeterministicRandom pops a seed along with an inclusive lower and
// exclusive upper bound and pushes a number drawn uniformly from the range.
// The number is derived from successive 8-byte windows of repeated hashing
// of the seed with an incrementing counter, rejecting draws that would bias
// the result.
//
// Stack transformation: [... seed min max] -> [... n]
func opcodeDeterministicRandom(op *opcode, data []byte, vm *Engine) error {
	maxNum, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	minNum, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	seed, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}

	if minNum > maxNum {
		str := fmt.Sprintf("lower bound %d is greater than upper bound %d",
			minNum, maxNum)
		return scriptError(ErrInvalidRandomRange, str)
	}
	if minNum == maxNum {
		vm.dstack.PushInt(minNum)
		return nil
	}

	// The range of the random source must be a multiple of the modulus to
	// give every possible output value an equal possibility.
	modulus := uint64((maxNum - minNum).Int32())
	sampleRange := math.MaxUint64 / modulus * modulus

	var (
		digest  []byte
		sample  uint64
		counter uint64
	)
	hashIdx := 3
	for {
		if hashIdx >= 3 {
			var le [8]byte
			binary.LittleEndian.PutUint64(le[:], counter)
			hasher := sha256.New()
			hasher.Write(seed)
			hasher.Write(le[:])
			digest = hasher.Sum(nil)
			hashIdx = 0
			counter++
		}

		sample = binary.LittleEndian.Uint64(digest[hashIdx*8:])
		hashIdx++
		if sample <= sampleRange {
			break
		}
	}

	vm.dstack.PushInt(scriptNum(sample%modulus) + minNum)
	return nil
}

// opcodeCheckSigFromStack treats the top three stack items as a public key,
// a message, and a signature and replaces them with the result of verifying
// the signature over the message.
//
// Under base and witness v0 execution the signature is a DER encoded ECDSA
// signature without a hash type byte, the message is hashed with a single
// SHA-256 before verification, and a failed verification fails the script
// rather than pushing false.  Under tapscript execution the signature is a
// 64-byte BIP 340 signature over the raw message bytes and an empty
// signature pushes false.
//
// Stack transformation: [... signature message pubkey] -> [... bool]
func opcodeCheckSigFromStack(op *opcode, data []byte, vm *Engine) error {
	pkBytes, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}
	msg, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}
	sigBytes, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}

	if vm.taprootCtx == nil {
		// Stack signatures never carry a hash type byte, so the
		// signature encoding checks apply to the whole item.
		if err := vm.checkSignatureEncoding(sigBytes); err != nil {
			return err
		}
		if err := vm.checkPubKeyEncoding(pkBytes); err != nil {
			return err
		}

		// Before tapscript a failed verification cannot be reduced to
		// a false result.
		hash := sha256.Sum256(msg)
		if !verifySigFromStack(sigBytes, hash[:], pkBytes, vm) {
			str := "signature from stack verification failed"
			return scriptError(ErrCheckSigVerify, str)
		}

		vm.dstack.PushBool(true)
		return nil
	}

	// The remainder mirrors tapscript OP_CHECKSIG: only non-empty
	// signatures count towards the sig ops budget, empty public keys
	// immediately fail execution, and an empty signature pushes false.
	valid := len(sigBytes) != 0
	if valid {
		if err := vm.taprootCtx.tallysigOp(); err != nil {
			return err
		}
	}

	switch {
	case len(pkBytes) == 0:
		return scriptError(ErrTaprootPubkeyIsEmpty, "")

	case len(pkBytes) == 32:
		if valid {
			if len(sigBytes) != 64 {
				str := fmt.Sprintf("invalid signature size %d",
					len(sigBytes))
				return scriptError(ErrInvalidTaprootSigLen, str)
			}
			if !schnorrVerifyMessage(sigBytes, msg, pkBytes) {
				str := "signature from stack verification failed"
				return scriptError(ErrTaprootSigInvalid, str)
			}
		}

	default:
		// Unknown public key types remain valid to allow future soft
		// forks to define them, unless policy discourages them.
		if vm.hasFlag(ScriptVerifyDiscourageUpgradeablePubkeyType) {
			str := fmt.Sprintf("public key of length %d is an "+
				"unknown pub key type", len(pkBytes))
			return scriptError(
				ErrDiscourageUpgradeablePubKeyType, str,
			)
		}
	}

	vm.dstack.PushBool(valid)
	return nil
}

// opcodeCheckSigFromStackVerify is a combination of opcodeCheckSigFromStack
// and opcodeVerify.  The opcodeCheckSigFromStack function is invoked followed
// by opcodeVerify.  See the documentation for each of those opcodes for more
// details.
//
// Stack transformation: [... signature message pubkey] -> [... bool] -> [...]
func opcodeCheckSigFromStackVerify(op *opcode, data []byte, vm *Engine) error {
	err := opcodeCheckSigFromStack(op, data, vm)
	if err == nil {
		err = abstractVerify(op, vm, ErrCheckSigVerify)
	}
	return err
}

// verifySigFromStack verifies an ECDSA signature over the given hash,
// parsing the signature strictly or laxly depending on the active script
// flags.
func verifySigFromStack(sigBytes, hash, pkBytes []byte, vm *Engine) bool {
	var (
		signature *ecdsa.Signature
		err       error
	)
	if vm.hasFlag(ScriptVerifyStrictEncoding) ||
		vm.hasFlag(ScriptVerifyDERSignatures) {

		signature, err = ecdsa.ParseDERSignature(sigBytes)
	} else {
		signature, err = ecdsa.ParseSignature(sigBytes)
	}
	if err != nil {
		return false
	}

	pubKey, err := btcec.ParsePubKey(pkBytes)
	if err != nil {
		return false
	}

	return signature.Verify(hash, pubKey)
}

// schnorrVerifyMessage verifies a BIP 340 signature over a message of
// arbitrary length.  Tapscript signature checks always sign a fixed size
// digest, but signatures checked from the stack commit to the raw message
// bytes, so the challenge is computed over the message directly.
func schnorrVerifyMessage(sig, msg, pkBytes []byte) bool {
	pubKey, err := schnorr.ParsePubKey(pkBytes)
	if err != nil {
		return false
	}

	var r secp256k1.FieldVal
	if r.SetByteSlice(sig[0:32]) {
		return false
	}
	var s secp256k1.ModNScalar
	if s.SetByteSlice(sig[32:64]) {
		return false
	}

	// e = int(tagged_hash("BIP0340/challenge", bytes(r) || bytes(P) || m))
	// mod n.
	commitment := chainhash.TaggedHash(
		chainhash.TagBIP0340Challenge, sig[0:32],
		schnorr.SerializePubKey(pubKey), msg,
	)
	var e secp256k1.ModNScalar
	e.SetByteSlice(commitment[:])

	// R = s*G - e*P.
	var P, sG, eP, R secp256k1.JacobianPoint
	pubKey.AsJacobian(&P)
	e.Negate()
	secp256k1.ScalarBaseMultNonConst(&s, &sG)
	secp256k1.ScalarMultNonConst(&e, &P, &eP)
	secp256k1.AddNonConst(&sG, &eP, &R)

	// Fail if R is the point at infinity or has an odd y coordinate.
	if (R.X.IsZero() && R.Y.IsZero()) || R.Z.IsZero() {
		return false
	}
	R.ToAffine()
	if R.Y.IsOdd() {
		return false
	}

	return r.Equals(&R.X)
}

// opcodeSha256Initialize pops the top stack item and pushes a SHA-256
// midstate primed with it.
//
// Stack transformation: [... data] -> [... ctx]
func opcodeSha256Initialize(op *opcode, data []byte, vm *Engine) error {
	if vm.taprootCtx == nil {
		return errTapscriptOnlyOpcode(op)
	}

	v, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}

	ctx := newSha256Ctx()
	if err := ctx.write(v); err != nil {
		return scriptError(ErrSha2ContextWrite, err.Error())
	}

	vm.dstack.PushByteArray(ctx.save())
	return nil
}

// opcodeSha256Update pops a serialized SHA-256 midstate along with more data
// to hash and pushes the updated midstate.
//
// Stack transformation: [... ctx data] -> [... ctx]
func opcodeSha256Update(op *opcode, data []byte, vm *Engine) error {
	if vm.taprootCtx == nil {
		return errTapscriptOnlyOpcode(op)
	}

	v, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}
	serializedCtx, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}

	ctx, err := loadSha256Ctx(serializedCtx)
	if err != nil {
		return scriptError(ErrSha2ContextLoad, err.Error())
	}
	if err := ctx.write(v); err != nil {
		return scriptError(ErrSha2ContextWrite, err.Error())
	}

	vm.dstack.PushByteArray(ctx.save())
	return nil
}

// opcodeSha256Finalize pops a serialized SHA-256 midstate along with final
// data to hash and pushes the resulting 32-byte digest.
//
// Stack transformation: [... ctx data] -> [... hash]
func opcodeSha256Finalize(op *opcode, data []byte, vm *Engine) error {
	if vm.taprootCtx == nil {
		return errTapscriptOnlyOpcode(op)
	}

	v, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}
	serializedCtx, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}

	ctx, err := loadSha256Ctx(serializedCtx)
	if err != nil {
		return scriptError(ErrSha2ContextLoad, err.Error())
	}
	if err := ctx.write(v); err != nil {
		return scriptError(ErrSha2ContextWrite, err.Error())
	}

	vm.dstack.PushByteArray(ctx.finalize())
	return nil
}

// popIntrospectionIndex pops the index operand shared by the input and
// output inspection opcodes.
func popIntrospectionIndex(vm *Engine) (int, error) {
	num, err := vm.dstack.PopInt()
	if err != nil {
		return 0, err
	}
	return int(num.Int32()), nil
}

// inspectedInput returns the transaction input being inspected along with
// the output it spends.  Inspection of spent outputs requires the engine to
// have been given a previous output fetcher.
func (vm *Engine) inspectedInput(idx int) (*elwire.TxIn, *elwire.TxOut, error) {
	if vm.prevOutFetcher == nil {
		str := "script requires spent outputs for inspection"
		return nil, nil, scriptError(ErrIntrospectContextUnavailable, str)
	}
	if idx < 0 || idx >= len(vm.tx.TxIn) {
		str := fmt.Sprintf("input index %d is invalid for a transaction "+
			"with %d inputs", idx, len(vm.tx.TxIn))
		return nil, nil, scriptError(ErrIntrospectIndexOutOfBounds, str)
	}

	txIn := vm.tx.TxIn[idx]
	utxo := vm.prevOutFetcher.FetchPrevOutput(txIn.PreviousOutPoint)
	if utxo == nil {
		str := fmt.Sprintf("unable to find output spent by input %d", idx)
		return nil, nil, scriptError(ErrIntrospectContextUnavailable, str)
	}
	return txIn, utxo, nil
}

// inspectedOutput returns the transaction output being inspected.
func (vm *Engine) inspectedOutput(idx int) (*elwire.TxOut, error) {
	if idx < 0 || idx >= len(vm.tx.TxOut) {
		str := fmt.Sprintf("output index %d is invalid for a transaction "+
			"with %d outputs", idx, len(vm.tx.TxOut))
		return nil, scriptError(ErrIntrospectIndexOutOfBounds, str)
	}
	return vm.tx.TxOut[idx], nil
}

// pushConfValue pushes a confidential value onto the data stack as the value
// followed by its prefix byte.  Explicit amounts are pushed as 8 little
// endian bytes, commitments are pushed whole, and a null value pushes an
// explicit zero.
func pushConfValue(s *stack, value elwire.ConfidentialValue) {
	var amount, prefix []byte
	switch {
	case value.IsNull():
		prefix = []byte{elwire.PrefixExplicit}
		amount = make([]byte, 8)

	case value.IsExplicit():
		prefix = []byte{value.Commitment[0]}

		// The explicit amount is serialized big endian.
		amount = make([]byte, 8)
		for i := range amount {
			amount[i] = value.Commitment[8-i]
		}

	default:
		prefix = []byte{value.Commitment[0]}
		amount = make([]byte, 32)
		copy(amount, value.Commitment[1:])
	}

	s.PushByteArray(amount)
	s.PushByteArray(prefix)
}

// pushConfAsset pushes a confidential asset onto the data stack as the
// 32-byte asset payload followed by its prefix byte.
func pushConfAsset(s *stack, asset elwire.ConfidentialAsset) {
	payload := make([]byte, len(asset.Commitment)-1)
	copy(payload, asset.Commitment[1:])
	s.PushByteArray(payload)
	s.PushByteArray([]byte{asset.Commitment[0]})
}

// pushScriptPubKey pushes a public key script onto the data stack.  Witness
// programs push the program followed by the witness version while all other
// scripts push a single SHA-256 of the script followed by -1.
func pushScriptPubKey(s *stack, pkScript []byte) {
	if IsWitnessProgram(pkScript) {
		version, program, _ := ExtractWitnessProgramInfo(pkScript)
		s.PushByteArray(program)
		s.PushInt(scriptNum(version))
		return
	}

	hash := sha256.Sum256(pkScript)
	s.PushByteArray(hash[:])
	s.PushInt(scriptNum(-1))
}

// opcodeInspectInputOutPoint pushes the previous outpoint spent by the input
// at the given index as the txid, the 4-byte little endian output index, and
// the outpoint flag byte.
//
// Stack transformation: [... idx] -> [... txid vout flag]
func opcodeInspectInputOutPoint(op *opcode, data []byte, vm *Engine) error {
	if vm.taprootCtx == nil {
		return errTapscriptOnlyOpcode(op)
	}

	idx, err := popIntrospectionIndex(vm)
	if err != nil {
		return err
	}
	txIn, _, err := vm.inspectedInput(idx)
	if err != nil {
		return err
	}

	hash := txIn.PreviousOutPoint.Hash
	vm.dstack.PushByteArray(hash[:])
	pushLE32(&vm.dstack, txIn.PreviousOutPoint.Index)
	vm.dstack.PushByteArray([]byte{txIn.OutpointFlag()})
	return nil
}

// opcodeInspectInputAsset pushes the asset of the output spent by the input
// at the given index.
//
// Stack transformation: [... idx] -> [... asset prefix]
func opcodeInspectInputAsset(op *opcode, data []byte, vm *Engine) error {
	if vm.taprootCtx == nil {
		return errTapscriptOnlyOpcode(op)
	}

	idx, err := popIntrospectionIndex(vm)
	if err != nil {
		return err
	}
	_, utxo, err := vm.inspectedInput(idx)
	if err != nil {
		return err
	}
	if utxo.Asset.IsNull() {
		str := fmt.Sprintf("output spent by input %d has no asset", idx)
		return scriptError(ErrIntrospectContextUnavailable, str)
	}

	pushConfAsset(&vm.dstack, utxo.Asset)
	return nil
}

// opcodeInspectInputValue pushes the value of the output spent by the input
// at the given index.
//
// Stack transformation: [... idx] -> [... value prefix]
func opcodeInspectInputValue(op *opcode, data []byte, vm *Engine) error {
	if vm.taprootCtx == nil {
		return errTapscriptOnlyOpcode(op)
	}

	idx, err := popIntrospectionIndex(vm)
	if err != nil {
		return err
	}
	_, utxo, err := vm.inspectedInput(idx)
	if err != nil {
		return err
	}

	pushConfValue(&vm.dstack, utxo.Value)
	return nil
}

// opcodeInspectInputScriptPubKey pushes the public key script of the output
// spent by the input at the given index.
//
// Stack transformation: [... idx] -> [... script version]
func opcodeInspectInputScriptPubKey(op *opcode, data []byte, vm *Engine) error {
	if vm.taprootCtx == nil {
		return errTapscriptOnlyOpcode(op)
	}

	idx, err := popIntrospectionIndex(vm)
	if err != nil {
		return err
	}
	_, utxo, err := vm.inspectedInput(idx)
	if err != nil {
		return err
	}

	pushScriptPubKey(&vm.dstack, utxo.PkScript)
	return nil
}

// opcodeInspectInputSequence pushes the 4-byte little endian sequence number
// of the input at the given index.
//
// Stack transformation: [... idx] -> [... sequence]
func opcodeInspectInputSequence(op *opcode, data []byte, vm *Engine) error {
	if vm.taprootCtx == nil {
		return errTapscriptOnlyOpcode(op)
	}

	idx, err := popIntrospectionIndex(vm)
	if err != nil {
		return err
	}
	txIn, _, err := vm.inspectedInput(idx)
	if err != nil {
		return err
	}

	pushLE32(&vm.dstack, txIn.Sequence)
	return nil
}

// opcodeInspectInputIssuance pushes the issuance attached to the input at
// the given index, or false when the input has none.  The fields are pushed
// such that the top stack item is empty if and only if there is no issuance.
//
// Stack transformation:
// [... idx] -> [... inflationkeys prefix amount prefix entropy noncehash]
// [... idx] -> [... false]
func opcodeInspectInputIssuance(op *opcode, data []byte, vm *Engine) error {
	if vm.taprootCtx == nil {
		return errTapscriptOnlyOpcode(op)
	}

	idx, err := popIntrospectionIndex(vm)
	if err != nil {
		return err
	}
	txIn, _, err := vm.inspectedInput(idx)
	if err != nil {
		return err
	}

	if !txIn.HasIssuance() {
		vm.dstack.PushBool(false)
		return nil
	}

	pushConfValue(&vm.dstack, txIn.AssetIssuance.InflationKeys)
	pushConfValue(&vm.dstack, txIn.AssetIssuance.Amount)
	entropy := txIn.AssetIssuance.Entropy
	vm.dstack.PushByteArray(entropy[:])
	nonce := txIn.AssetIssuance.BlindingNonce
	vm.dstack.PushByteArray(nonce[:])
	return nil
}

// opcodePushCurrentInputIndex pushes the index of the input whose script is
// being executed.
//
// Stack transformation: [...] -> [... idx]
func opcodePushCurrentInputIndex(op *opcode, data []byte, vm *Engine) error {
	if vm.taprootCtx == nil {
		return errTapscriptOnlyOpcode(op)
	}

	vm.dstack.PushInt(scriptNum(vm.txIdx))
	return nil
}

// opcodeInspectOutputAsset pushes the asset of the output at the given
// index.
//
// Stack transformation: [... idx] -> [... asset prefix]
func opcodeInspectOutputAsset(op *opcode, data []byte, vm *Engine) error {
	if vm.taprootCtx == nil {
		return errTapscriptOnlyOpcode(op)
	}

	idx, err := popIntrospectionIndex(vm)
	if err != nil {
		return err
	}
	txOut, err := vm.inspectedOutput(idx)
	if err != nil {
		return err
	}
	if txOut.Asset.IsNull() {
		str := fmt.Sprintf("output %d has no asset", idx)
		return scriptError(ErrIntrospectContextUnavailable, str)
	}

	pushConfAsset(&vm.dstack, txOut.Asset)
	return nil
}

// opcodeInspectOutputValue pushes the value of the output at the given
// index.
//
// Stack transformation: [... idx] -> [... value prefix]
func opcodeInspectOutputValue(op *opcode, data []byte, vm *Engine) error {
	if vm.taprootCtx == nil {
		return errTapscriptOnlyOpcode(op)
	}

	idx, err := popIntrospectionIndex(vm)
	if err != nil {
		return err
	}
	txOut, err := vm.inspectedOutput(idx)
	if err != nil {
		return err
	}

	pushConfValue(&vm.dstack, txOut.Value)
	return nil
}

// opcodeInspectOutputNonce pushes the nonce commitment of the output at the
// given index, or false when the output has none.
//
// Stack transformation: [... idx] -> [... nonce]
func opcodeInspectOutputNonce(op *opcode, data []byte, vm *Engine) error {
	if vm.taprootCtx == nil {
		return errTapscriptOnlyOpcode(op)
	}

	idx, err := popIntrospectionIndex(vm)
	if err != nil {
		return err
	}
	txOut, err := vm.inspectedOutput(idx)
	if err != nil {
		return err
	}

	if txOut.Nonce.IsNull() {
		vm.dstack.PushBool(false)
		return nil
	}

	nonce := make([]byte, len(txOut.Nonce.Commitment))
	copy(nonce, txOut.Nonce.Commitment)
	vm.dstack.PushByteArray(nonce)
	return nil
}

// opcodeInspectOutputScriptPubKey pushes the public key script of the output
// at the given index.
//
// Stack transformation: [... idx] -> [... script version]
func opcodeInspectOutputScriptPubKey(op *opcode, data []byte, vm *Engine) error {
	if vm.taprootCtx == nil {
		return errTapscriptOnlyOpcode(op)
	}

	idx, err := popIntrospectionIndex(vm)
	if err != nil {
		return err
	}
	txOut, err := vm.inspectedOutput(idx)
	if err != nil {
		return err
	}

	pushScriptPubKey(&vm.dstack, txOut.PkScript)
	return nil
}

// opcodeInspectVersion pushes the 4-byte little endian version of the
// transaction being executed.
//
// Stack transformation: [...] -> [... version]
func opcodeInspectVersion(op *opcode, data []byte, vm *Engine) error {
	if vm.taprootCtx == nil {
		return errTapscriptOnlyOpcode(op)
	}

	pushLE32(&vm.dstack, uint32(vm.tx.Version))
	return nil
}

// opcodeInspectLockTime pushes the 4-byte little endian lock time of the
// transaction being executed.
//
// Stack transformation: [...] -> [... locktime]
func opcodeInspectLockTime(op *opcode, data []byte, vm *Engine) error {
	if vm.taprootCtx == nil {
		return errTapscriptOnlyOpcode(op)
	}

	pushLE32(&vm.dstack, vm.tx.LockTime)
	return nil
}

// opcodeInspectNumInputs pushes the number of inputs of the transaction
// being executed.
//
// Stack transformation: [...] -> [... numinputs]
func opcodeInspectNumInputs(op *opcode, data []byte, vm *Engine) error {
	if vm.taprootCtx == nil {
		return errTapscriptOnlyOpcode(op)
	}

	vm.dstack.PushInt(scriptNum(len(vm.tx.TxIn)))
	return nil
}

// opcodeInspectNumOutputs pushes the number of outputs of the transaction
// being executed.
//
// Stack transformation: [...] -> [... numoutputs]
func opcodeInspectNumOutputs(op *opcode, data []byte, vm *Engine) error {
	if vm.taprootCtx == nil {
		return errTapscriptOnlyOpcode(op)
	}

	vm.dstack.PushInt(scriptNum(len(vm.tx.TxOut)))
	return nil
}

// opcodeTxWeight pushes the weight of the transaction being executed as 8
// little endian bytes.
//
// Stack transformation: [...] -> [... weight]
func opcodeTxWeight(op *opcode, data []byte, vm *Engine) error {
	if vm.taprootCtx == nil {
		return errTapscriptOnlyOpcode(op)
	}

	pushLE64(&vm.dstack, uint64(vm.tx.Weight()))
	return nil
}

// peekLE64Operands returns the top two stack items interpreted as signed
// 64-bit little endian integers without popping them.  Both operands must be
// exactly 8 bytes.
func peekLE64Operands(vm *Engine) (int64, int64, error) {
	v2, err := vm.dstack.PeekByteArray(0)
	if err != nil {
		return 0, 0, err
	}
	v1, err := vm.dstack.PeekByteArray(1)
	if err != nil {
		return 0, 0, err
	}
	if len(v2) != 8 || len(v1) != 8 {
		str := fmt.Sprintf("operand lengths %d and %d are not 8 bytes",
			len(v1), len(v2))
		return 0, 0, scriptError(ErrExpected8Bytes, str)
	}

	a := int64(binary.LittleEndian.Uint64(v1))
	b := int64(binary.LittleEndian.Uint64(v2))
	return a, b, nil
}

// push64BitResult replaces the two operands of a 64-bit arithmetic opcode
// with its result followed by true.
func push64BitResult(vm *Engine, result int64) error {
	if err := vm.dstack.DropN(2); err != nil {
		return err
	}
	pushLE64(&vm.dstack, uint64(result))
	vm.dstack.PushBool(true)
	return nil
}

// opcodeAdd64 adds the top two stack items as signed 64-bit integers.  On
// overflow the operands are left in place and false is pushed.
//
// Stack transformation: [... a b] -> [... a+b true] or [... a b false]
func opcodeAdd64(op *opcode, data []byte, vm *Engine) error {
	if vm.taprootCtx == nil {
		return errTapscriptOnlyOpcode(op)
	}

	a, b, err := peekLE64Operands(vm)
	if err != nil {
		return err
	}

	if (a > 0 && b > math.MaxInt64-a) || (a < 0 && b < math.MinInt64-a) {
		vm.dstack.PushBool(false)
		return nil
	}
	return push64BitResult(vm, a+b)
}

// opcodeSub64 subtracts the top stack item from the one below it as signed
// 64-bit integers.  On overflow the operands are left in place and false is
// pushed.
//
// Stack transformation: [... a b] -> [... a-b true] or [... a b false]
func opcodeSub64(op *opcode, data []byte, vm *Engine) error {
	if vm.taprootCtx == nil {
		return errTapscriptOnlyOpcode(op)
	}

	a, b, err := peekLE64Operands(vm)
	if err != nil {
		return err
	}

	if (b > 0 && a < math.MinInt64+b) || (b < 0 && a > math.MaxInt64+b) {
		vm.dstack.PushBool(false)
		return nil
	}
	return push64BitResult(vm, a-b)
}

// opcodeMul64 multiplies the top two stack items as signed 64-bit integers.
// On overflow the operands are left in place and false is pushed.
//
// Stack transformation: [... a b] -> [... a*b true] or [... a b false]
func opcodeMul64(op *opcode, data []byte, vm *Engine) error {
	if vm.taprootCtx == nil {
		return errTapscriptOnlyOpcode(op)
	}

	a, b, err := peekLE64Operands(vm)
	if err != nil {
		return err
	}

	if (a > 0 && b > 0 && a > math.MaxInt64/b) ||
		(a > 0 && b < 0 && b < math.MinInt64/a) ||
		(a < 0 && b > 0 && a < math.MinInt64/b) ||
		(a < 0 && b < 0 && b < math.MaxInt64/a) {

		vm.dstack.PushBool(false)
		return nil
	}
	return push64BitResult(vm, a*b)
}

// opcodeDiv64 divides the second stack item by the top stack item as signed
// 64-bit integers and pushes the remainder followed by the quotient.  The
// remainder is adjusted so that 0 <= r < |b|, making the division euclidean.
// Division by zero or overflow leaves the operands in place and pushes
// false.
//
// Stack transformation: [... a b] -> [... r q true] or [... a b false]
func opcodeDiv64(op *opcode, data []byte, vm *Engine) error {
	if vm.taprootCtx == nil {
		return errTapscriptOnlyOpcode(op)
	}

	a, b, err := peekLE64Operands(vm)
	if err != nil {
		return err
	}

	if b == 0 || (b == -1 && a == math.MinInt64) {
		vm.dstack.PushBool(false)
		return nil
	}

	r, q := a%b, a/b
	if r < 0 && b > 0 {
		r += b
		q--
	} else if r < 0 && b < 0 {
		r -= b
		q++
	}

	if err := vm.dstack.DropN(2); err != nil {
		return err
	}
	pushLE64(&vm.dstack, uint64(r))
	pushLE64(&vm.dstack, uint64(q))
	vm.dstack.PushBool(true)
	return nil
}

// opcodeNeg64 negates the top stack item as a signed 64-bit integer.  On
// overflow the operand is left in place and false is pushed.
//
// Stack transformation: [... a] -> [... -a true] or [... a false]
func opcodeNeg64(op *opcode, data []byte, vm *Engine) error {
	if vm.taprootCtx == nil {
		return errTapscriptOnlyOpcode(op)
	}

	v, err := vm.dstack.PeekByteArray(0)
	if err != nil {
		return err
	}
	if len(v) != 8 {
		str := fmt.Sprintf("operand length %d is not 8 bytes", len(v))
		return scriptError(ErrExpected8Bytes, str)
	}

	a := int64(binary.LittleEndian.Uint64(v))
	if a == math.MinInt64 {
		vm.dstack.PushBool(false)
		return nil
	}

	if err := vm.dstack.DropN(1); err != nil {
		return err
	}
	pushLE64(&vm.dstack, uint64(-a))
	vm.dstack.PushBool(true)
	return nil
}

// compare64 pops the top two stack items as signed 64-bit integers and
// pushes the result of the given comparison.
func compare64(vm *Engine, compare func(a, b int64) bool) error {
	a, b, err := peekLE64Operands(vm)
	if err != nil {
		return err
	}
	if err := vm.dstack.DropN(2); err != nil {
		return err
	}
	vm.dstack.PushBool(compare(a, b))
	return nil
}

// opcodeLessThan64 pushes whether the second stack item is less than the top
// stack item, treating both as signed 64-bit integers.
//
// Stack transformation: [... a b] -> [... bool]
func opcodeLessThan64(op *opcode, data []byte, vm *Engine) error {
	if vm.taprootCtx == nil {
		return errTapscriptOnlyOpcode(op)
	}
	return compare64(vm, func(a, b int64) bool { return a < b })
}

// opcodeLessThanOrEqual64 pushes whether the second stack item is less than
// or equal to the top stack item, treating both as signed 64-bit integers.
//
// Stack transformation: [... a b] -> [... bool]
func opcodeLessThanOrEqual64(op *opcode, data []byte, vm *Engine) error {
	if vm.taprootCtx == nil {
		return errTapscriptOnlyOpcode(op)
	}
	return compare64(vm, func(a, b int64) bool { return a <= b })
}

// opcodeGreaterThan64 pushes whether the second stack item is greater than
// the top stack item, treating both as signed 64-bit integers.
//
// Stack transformation: [... a b] -> [... bool]
func opcodeGreaterThan64(op *opcode, data []byte, vm *Engine) error {
	if vm.taprootCtx == nil {
		return errTapscriptOnlyOpcode(op)
	}
	return compare64(vm, func(a, b int64) bool { return a > b })
}

// opcodeGreaterThanOrEqual64 pushes whether the second stack item is greater
// than or equal to the top stack item, treating both as signed 64-bit
// integers.
//
// Stack transformation: [... a b] -> [... bool]
func opcodeGreaterThanOrEqual64(op *opcode, data []byte, vm *Engine) error {
	if vm.taprootCtx == nil {
		return errTapscriptOnlyOpcode(op)
	}
	return compare64(vm, func(a, b int64) bool { return a >= b })
}

// opcodeScriptNumToLE64 converts the top stack item from a script number to
// 8 little endian bytes.
//
// Stack transformation: [... n] -> [... le64(n)]
func opcodeScriptNumToLE64(op *opcode, data []byte, vm *Engine) error {
	if vm.taprootCtx == nil {
		return errTapscriptOnlyOpcode(op)
	}

	num, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}

	pushLE64(&vm.dstack, uint64(int64(num.Int32())))
	return nil
}

// opcodeLE64ToScriptNum converts the top stack item from 8 little endian
// bytes to a script number, failing when the value does not fit the script
// number range.
//
// Stack transformation: [... le64(n)] -> [... n]
func opcodeLE64ToScriptNum(op *opcode, data []byte, vm *Engine) error {
	if vm.taprootCtx == nil {
		return errTapscriptOnlyOpcode(op)
	}

	v, err := vm.dstack.PeekByteArray(0)
	if err != nil {
		return err
	}
	if len(v) != 8 {
		str := fmt.Sprintf("operand length %d is not 8 bytes", len(v))
		return scriptError(ErrExpected8Bytes, str)
	}

	num := scriptNum(int64(binary.LittleEndian.Uint64(v)))
	encoded := num.Bytes()
	if len(encoded) > defaultScriptNumLen {
		str := fmt.Sprintf("value %d does not fit a script number", num)
		return scriptError(ErrArithmetic64, str)
	}

	if err := vm.dstack.DropN(1); err != nil {
		return err
	}
	vm.dstack.PushByteArray(encoded)
	return nil
}

// opcodeLE32ToLE64 zero extends the top stack item from 4 unsigned little
// endian bytes to 8 little endian bytes.
//
// Stack transformation: [... le32(n)] -> [... le64(n)]
func opcodeLE32ToLE64(op *opcode, data []byte, vm *Engine) error {
	if vm.taprootCtx == nil {
		return errTapscriptOnlyOpcode(op)
	}

	v, err := vm.dstack.PeekByteArray(0)
	if err != nil {
		return err
	}
	if len(v) != 4 {
		str := fmt.Sprintf("operand length %d is not 4 bytes", len(v))
		return scriptError(ErrArithmetic64, str)
	}

	num := binary.LittleEndian.Uint32(v)
	if err := vm.dstack.DropN(1); err != nil {
		return err
	}
	pushLE64(&vm.dstack, uint64(num))
	return nil
}

// opcodeEcMulScalarVerify verifies that the third stack item is the result
// of multiplying the compressed public key below the top of the stack by the
// 32-byte scalar on top of it, failing the script otherwise.
//
// Stack transformation: [... result generator scalar] -> [...]
func opcodeEcMulScalarVerify(op *opcode, data []byte, vm *Engine) error {
	if vm.taprootCtx == nil {
		return errTapscriptOnlyOpcode(op)
	}

	scalarBytes, err := vm.dstack.PeekByteArray(0)
	if err != nil {
		return err
	}
	genBytes, err := vm.dstack.PeekByteArray(1)
	if err != nil {
		return err
	}
	resBytes, err := vm.dstack.PeekByteArray(2)
	if err != nil {
		return err
	}

	if !isCompressedPubKey(genBytes) || !isCompressedPubKey(resBytes) {
		str := "ec multiplication requires compressed public keys"
		return scriptError(ErrPubKeyType, str)
	}

	// Point multiplication counts towards the sig ops budget the same way
	// a signature check does.
	if err := vm.taprootCtx.tallysigOp(); err != nil {
		return err
	}

	if len(scalarBytes) != 32 || !verifyEcScalarMul(resBytes, genBytes,
		scalarBytes) {

		str := "ec scalar multiplication verification failed"
		return scriptError(ErrEcMultVerifyFail, str)
	}

	return vm.dstack.DropN(3)
}

// verifyEcScalarMul returns whether the result point equals the generator
// point multiplied by the scalar.
func verifyEcScalarMul(resBytes, genBytes, scalarBytes []byte) bool {
	generator, err := btcec.ParsePubKey(genBytes)
	if err != nil {
		return false
	}
	result, err := btcec.ParsePubKey(resBytes)
	if err != nil {
		return false
	}

	var scalar secp256k1.ModNScalar
	if overflow := scalar.SetByteSlice(scalarBytes); overflow ||
		scalar.IsZero() {

		return false
	}

	var genPoint, product, expected secp256k1.JacobianPoint
	generator.AsJacobian(&genPoint)
	secp256k1.ScalarMultNonConst(&scalar, &genPoint, &product)
	product.ToAffine()
	result.AsJacobian(&expected)

	return product.X.Equals(&expected.X) && product.Y.Equals(&expected.Y)
}

// opcodeTweakVerify verifies that the third stack item is the x-only
// internal key on top of the stack tweaked by the 32-byte tweak below it,
// failing the script otherwise.  The first byte of the tweaked key carries
// the parity of its y coordinate.
//
// Stack transformation: [... tweakedkey tweak internalkey] -> [...]
func opcodeTweakVerify(op *opcode, data []byte, vm *Engine) error {
	if vm.taprootCtx == nil {
		return errTapscriptOnlyOpcode(op)
	}

	internalBytes, err := vm.dstack.PeekByteArray(0)
	if err != nil {
		return err
	}
	tweakBytes, err := vm.dstack.PeekByteArray(1)
	if err != nil {
		return err
	}
	tweakedBytes, err := vm.dstack.PeekByteArray(2)
	if err != nil {
		return err
	}

	if len(tweakedBytes) != 33 ||
		(tweakedBytes[0] != 0x02 && tweakedBytes[0] != 0x03) ||
		len(internalBytes) != 32 || len(tweakBytes) != 32 {

		str := "tweak verification operands have invalid lengths"
		return scriptError(ErrPubKeyType, str)
	}

	// Point addition counts towards the sig ops budget the same way a
	// signature check does.
	if err := vm.taprootCtx.tallysigOp(); err != nil {
		return err
	}

	if !verifyTweakAdd(tweakedBytes, tweakBytes, internalBytes) {
		str := "tweaked key verification failed"
		return scriptError(ErrEcMultVerifyFail, str)
	}

	return vm.dstack.DropN(3)
}

// verifyTweakAdd returns whether the tweaked key equals the x-only internal
// key plus the tweak scalar multiplied by the generator, with the expected y
// parity.
func verifyTweakAdd(tweakedBytes, tweakBytes, internalBytes []byte) bool {
	internalKey, err := schnorr.ParsePubKey(internalBytes)
	if err != nil {
		return false
	}

	var tweak secp256k1.ModNScalar
	if overflow := tweak.SetByteSlice(tweakBytes); overflow {
		return false
	}

	var internalPoint, tweakPoint, tweakedPoint secp256k1.JacobianPoint
	internalKey.AsJacobian(&internalPoint)
	secp256k1.ScalarBaseMultNonConst(&tweak, &tweakPoint)
	secp256k1.AddNonConst(&internalPoint, &tweakPoint, &tweakedPoint)
	if tweakedPoint.Z.IsZero() {
		return false
	}
	tweakedPoint.ToAffine()

	tweakedKey := btcec.NewPublicKey(&tweakedPoint.X, &tweakedPoint.Y)
	if !bytes.Equal(schnorr.SerializePubKey(tweakedKey), tweakedBytes[1:]) {
		return false
	}
	return tweakedPoint.Y.IsOdd() == (tweakedBytes[0] == 0x03)
}

// OpcodeByName is a map that can be used to lookup an opcode by its
// human-readable name (OP_CHECKMULTISIG, OP_CHECKSIG, etc).
var OpcodeByName = make(map[string]byte)

func init() {
	// Initialize the opcode name to value map using the contents of the
	// opcode array.  Also add entries for "OP_FALSE", "OP_TRUE", and
	// "OP_NOP2" since they are aliases for "OP_0", "OP_1",
	// and "OP_CHECKLOCKTIMEVERIFY" respectively.
	for _, op := range opcodeArray {
		OpcodeByName[op.name] = op.value
	}
	OpcodeByName["OP_FALSE"] = OP_FALSE
	OpcodeByName["OP_TRUE"] = OP_TRUE
	OpcodeByName["OP_NOP2"] = OP_CHECKLOCKTIMEVERIFY
	OpcodeByName["OP_NOP3"] = OP_CHECKSEQUENCEVERIFY
}
