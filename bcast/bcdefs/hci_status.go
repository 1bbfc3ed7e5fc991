/**
 * Licensed to the Apache Software Foundation (ASF) under one
 * or more contributor license agreements.  See the NOTICE file
 * distributed with this work for additional information
 * regarding copyright ownership.  The ASF licenses this file
 * to you under the Apache License, Version 2.0 (the
 * "License"); you may not use this file except in compliance
 * with the License.  You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

package bcdefs

import (
	"fmt"
)

// HCI status codes reported by the controller and by the advertising
// manager.  Zero is always success.
const (
	HCI_SUCCESS                  uint8 = 0x00
	HCI_ERR_UNKNOWN_HCI_CMD      uint8 = 0x01
	HCI_ERR_UNK_CONN_ID          uint8 = 0x02
	HCI_ERR_HW_FAIL              uint8 = 0x03
	HCI_ERR_MEM_CAPACITY         uint8 = 0x07
	HCI_ERR_CONN_LIMIT           uint8 = 0x09
	HCI_ERR_CMD_DISALLOWED       uint8 = 0x0C
	HCI_ERR_CONN_REJ_RESOURCES   uint8 = 0x0D
	HCI_ERR_UNSUPPORTED          uint8 = 0x11
	HCI_ERR_INV_HCI_CMD_PARMS    uint8 = 0x12
	HCI_ERR_CONN_TERM_LOCAL      uint8 = 0x16
	HCI_ERR_UNSPECIFIED          uint8 = 0x1F
	HCI_ERR_UNSUPP_LMP_LL_PARM   uint8 = 0x20
	HCI_ERR_LMP_LL_RSP_TMO       uint8 = 0x22
	HCI_ERR_INSUFFICIENT_SEC     uint8 = 0x2F
	HCI_ERR_PARM_OUT_OF_RANGE    uint8 = 0x30
	HCI_ERR_CTLR_BUSY            uint8 = 0x3A
	HCI_ERR_UNK_ADV_ID           uint8 = 0x42
	HCI_ERR_LIMIT_REACHED        uint8 = 0x43
	HCI_ERR_OP_CANCELLED_BY_HOST uint8 = 0x44
	HCI_ERR_PACKET_TOO_LONG      uint8 = 0x45
)

var HciStatusStringMap = map[uint8]string{
	HCI_SUCCESS:                  "success",
	HCI_ERR_UNKNOWN_HCI_CMD:      "unknown hci cmd",
	HCI_ERR_UNK_CONN_ID:          "unknown connection id",
	HCI_ERR_HW_FAIL:              "hw fail",
	HCI_ERR_MEM_CAPACITY:         "mem capacity",
	HCI_ERR_CONN_LIMIT:           "conn limit",
	HCI_ERR_CMD_DISALLOWED:       "cmd disallowed",
	HCI_ERR_CONN_REJ_RESOURCES:   "conn rej resources",
	HCI_ERR_UNSUPPORTED:          "unsupported",
	HCI_ERR_INV_HCI_CMD_PARMS:    "inv hci cmd parms",
	HCI_ERR_CONN_TERM_LOCAL:      "conn term local",
	HCI_ERR_UNSPECIFIED:          "unspecified",
	HCI_ERR_UNSUPP_LMP_LL_PARM:   "unsupp lmp ll parm",
	HCI_ERR_LMP_LL_RSP_TMO:       "lmp ll rsp tmo",
	HCI_ERR_INSUFFICIENT_SEC:     "insufficient sec",
	HCI_ERR_PARM_OUT_OF_RANGE:    "parm out of range",
	HCI_ERR_CTLR_BUSY:            "ctlr busy",
	HCI_ERR_UNK_ADV_ID:           "unknown advertising id",
	HCI_ERR_LIMIT_REACHED:        "limit reached",
	HCI_ERR_OP_CANCELLED_BY_HOST: "op cancelled by host",
	HCI_ERR_PACKET_TOO_LONG:      "packet too long",
}

func HciStatusToString(status uint8) string {
	s := HciStatusStringMap[status]
	if s == "" {
		return fmt.Sprintf("unknown (0x%02x)", status)
	}

	return s
}
